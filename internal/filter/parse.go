package filter

// Mode selects which textual filter grammar Parse accepts.
type Mode int

const (
	// ModeUnified accepts standard RFC 4515 syntax and the simple infix
	// syntax interchangeably at every subexpression position: a "(" run
	// immediately by '&', '|' or '!' is standard, anything else simple.
	ModeUnified Mode = iota
	// ModeStandard accepts only RFC 4515 parenthesized-prefix syntax.
	ModeStandard
	// ModeSimple accepts only the infix AND/OR/NOT syntax.
	ModeSimple
)

// Parse parses s according to mode (ModeUnified by default).
func Parse(s string, mode Mode) (Filter, error) {
	switch mode {
	case ModeStandard:
		return ParseStandard(s)
	case ModeSimple:
		return ParseSimple(s)
	default:
		return ParseUnified(s)
	}
}

// ParseUnified parses s accepting either RFC 4515 standard syntax or the
// simple infix syntax at every subexpression position.
func ParseUnified(s string) (Filter, error) {
	c := &cursor{s: s}
	f, err := parseUnifiedOrChain(c)
	if err != nil {
		return nil, err
	}
	skipSpace(c)
	if !c.eof() {
		return nil, parseErr(s, c.pos, "trailing input after filter")
	}
	return f, nil
}

func parseUnifiedOrChain(c *cursor) (Filter, error) {
	left, err := parseUnifiedAndChain(c)
	if err != nil {
		return nil, err
	}
	terms := []Filter{left}
	for tryConsumeKeyword(c, "OR") {
		right, err := parseUnifiedAndChain(c)
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

func parseUnifiedAndChain(c *cursor) (Filter, error) {
	left, err := parseUnifiedNotChain(c)
	if err != nil {
		return nil, err
	}
	terms := []Filter{left}
	for tryConsumeKeyword(c, "AND") {
		right, err := parseUnifiedNotChain(c)
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

func parseUnifiedNotChain(c *cursor) (Filter, error) {
	if tryConsumeKeyword(c, "NOT") {
		inner, err := parseUnifiedNotChain(c)
		if err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil
	}
	return parseUnifiedUnit(c)
}

// parseUnifiedUnit parses a single self-delimited "(" ... ")" unit: a
// standard and/or/not compound, a simple-syntax grouping paren, or an
// atomic item. This is the production RFC 4515's filterlist repeats, and
// the one a simple-mode atom position reduces to when it isn't a group.
func parseUnifiedUnit(c *cursor) (Filter, error) {
	skipSpace(c)
	if err := c.expect('('); err != nil {
		return nil, err
	}

	switch c.peek() {
	case '&':
		c.pos++
		children, err := parseUnifiedList(c)
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return And(children), nil
	case '|':
		c.pos++
		children, err := parseUnifiedList(c)
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return Or(children), nil
	case '!':
		c.pos++
		inner, err := parseUnifiedUnit(c)
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil
	case '(':
		inner, err := parseUnifiedOrChain(c)
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		start := c.pos
		for !c.eof() && c.s[c.pos] != ')' {
			c.pos++
		}
		if c.eof() {
			return nil, parseErr(c.s, start, "unterminated filter item")
		}
		item, err := parseItem(c.s[start:c.pos])
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return item, nil
	}
}

func parseUnifiedList(c *cursor) ([]Filter, error) {
	var out []Filter
	for c.peek() == '(' {
		f, err := parseUnifiedUnit(c)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, parseErr(c.s, c.pos, "expected at least one filter in filter list")
	}
	return out, nil
}
