package filter

import "strings"

// ParseSimple parses s as the infix "simple" filter syntax: AND/OR/NOT
// over atomic "(attr op value)" forms, e.g.
// "(gidNumber<=1000) AND NOT (memberUid=*)".
func ParseSimple(s string) (Filter, error) {
	c := &cursor{s: s}
	f, err := parseSimpleOr(c)
	if err != nil {
		return nil, err
	}
	skipSpace(c)
	if !c.eof() {
		return nil, parseErr(s, c.pos, "trailing input after filter")
	}
	return f, nil
}

func skipSpace(c *cursor) {
	for !c.eof() && isSpace(c.s[c.pos]) {
		c.pos++
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func isIdentByte(b byte) bool {
	return b == '-' || b == '.' || b == ';' || b == ':' ||
		(b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// tryConsumeKeyword consumes leading whitespace and, if the next token is
// kw (case-insensitive, word-bounded), consumes it too and returns true;
// otherwise it leaves c untouched.
func tryConsumeKeyword(c *cursor, kw string) bool {
	save := c.pos
	skipSpace(c)
	if c.pos+len(kw) > len(c.s) {
		c.pos = save
		return false
	}
	if !strings.EqualFold(c.s[c.pos:c.pos+len(kw)], kw) {
		c.pos = save
		return false
	}
	after := c.pos + len(kw)
	if after < len(c.s) && isIdentByte(c.s[after]) {
		c.pos = save
		return false
	}
	c.pos = after
	return true
}

func parseSimpleOr(c *cursor) (Filter, error) {
	left, err := parseSimpleAnd(c)
	if err != nil {
		return nil, err
	}
	terms := []Filter{left}
	for tryConsumeKeyword(c, "OR") {
		right, err := parseSimpleAnd(c)
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return Or(terms), nil
}

func parseSimpleAnd(c *cursor) (Filter, error) {
	left, err := parseSimpleNot(c)
	if err != nil {
		return nil, err
	}
	terms := []Filter{left}
	for tryConsumeKeyword(c, "AND") {
		right, err := parseSimpleNot(c)
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return And(terms), nil
}

func parseSimpleNot(c *cursor) (Filter, error) {
	if tryConsumeKeyword(c, "NOT") {
		inner, err := parseSimpleNot(c)
		if err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil
	}
	return parseSimpleAtom(c)
}

func parseSimpleAtom(c *cursor) (Filter, error) {
	skipSpace(c)
	if err := c.expect('('); err != nil {
		return nil, err
	}

	if c.peek() == '(' {
		inner, err := parseSimpleOr(c)
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return inner, nil
	}

	start := c.pos
	for !c.eof() && isIdentByte(c.s[c.pos]) {
		c.pos++
	}
	if c.eof() || !isOperatorStart(c.s[c.pos]) {
		return nil, parseErr(c.s, start, "expected atomic filter item or nested group")
	}

	itemStart := start
	for !c.eof() && c.s[c.pos] != ')' {
		c.pos++
	}
	if c.eof() {
		return nil, parseErr(c.s, itemStart, "unterminated filter item")
	}
	item, err := parseItem(c.s[itemStart:c.pos])
	if err != nil {
		return nil, err
	}
	if err := c.expect(')'); err != nil {
		return nil, err
	}
	return item, nil
}

func isOperatorStart(b byte) bool {
	return b == '=' || b == '~' || b == '<' || b == '>' || b == ':'
}
