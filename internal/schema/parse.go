package schema

import (
	"fmt"
	"strings"
)

// token-level scanner for RFC 4512's definition syntax, which is a
// parenthesised list of keyword-tagged fields:
//
//	( OID NAME 'n' DESC 'd' SUP s EQUALITY e SYNTAX oid SINGLE-VALUE )
type lexer struct {
	s   string
	pos int
}

func newLexer(s string) *lexer { return &lexer{s: strings.TrimSpace(s)} }

func (l *lexer) skipSpace() {
	for l.pos < len(l.s) && l.s[l.pos] == ' ' {
		l.pos++
	}
}

// next returns the next whitespace/paren-delimited token, honouring
// single-quoted strings (which may contain spaces) and "( a $ b )" lists
// (returned as one token, parens and all, for the caller to split).
func (l *lexer) next() (string, bool) {
	l.skipSpace()
	if l.pos >= len(l.s) {
		return "", false
	}

	switch l.s[l.pos] {
	case '(':
		return l.readParenList()
	case '\'':
		return l.readQuoted()
	default:
		start := l.pos
		for l.pos < len(l.s) && l.s[l.pos] != ' ' && l.s[l.pos] != '\'' {
			l.pos++
		}
		return l.s[start:l.pos], true
	}
}

func (l *lexer) readQuoted() (string, bool) {
	l.pos++ // opening '
	start := l.pos
	for l.pos < len(l.s) && l.s[l.pos] != '\'' {
		l.pos++
	}
	tok := l.s[start:l.pos]
	if l.pos < len(l.s) {
		l.pos++ // closing '
	}
	return tok, true
}

func (l *lexer) readParenList() (string, bool) {
	depth := 0
	start := l.pos
	for l.pos < len(l.s) {
		switch l.s[l.pos] {
		case '(':
			depth++
		case ')':
			depth--
		}
		l.pos++
		if depth == 0 {
			break
		}
	}
	return l.s[start:l.pos], true
}

// splitOIDList splits "( a $ b $ c )" or a bare "a" into its elements.
func splitOIDList(tok string) []string {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimPrefix(tok, "(")
	tok = strings.TrimSuffix(tok, ")")
	parts := strings.Split(tok, "$")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseAttributeType parses an RFC 4512 AttributeTypeDescription.
func ParseAttributeType(def string) (AttributeType, error) {
	l := newLexer(def)
	open, ok := l.next()
	if !ok || !strings.HasPrefix(open, "(") {
		return AttributeType{}, fmt.Errorf("schema: attribute type definition must start with '(': %q", def)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(open, "("), ")")
	bl := newLexer(body)

	oidTok, ok := bl.next()
	if !ok {
		return AttributeType{}, fmt.Errorf("schema: attribute type definition missing OID: %q", def)
	}
	at := AttributeType{OID: OID(oidTok), definition: normalizedDefinition(def)}

	for {
		kw, ok := bl.next()
		if !ok {
			break
		}
		switch kw {
		case "NAME":
			v, _ := bl.next()
			at.Names = namesFromToken(v)
		case "DESC":
			v, _ := bl.next()
			at.Desc = v
		case "OBSOLETE":
			at.Obsolete = true
		case "SUP":
			v, _ := bl.next()
			at.Sup = v
		case "EQUALITY":
			v, _ := bl.next()
			at.Equality = v
		case "ORDERING":
			v, _ := bl.next()
			at.Ordering = v
		case "SUBSTR":
			v, _ := bl.next()
			at.Substr = v
		case "SYNTAX":
			v, _ := bl.next()
			at.Syntax = OID(stripSyntaxLength(v))
		case "SINGLE-VALUE":
			at.SingleValued = true
		case "NO-USER-MODIFICATION":
			at.NoUserMod = true
		case "USAGE":
			v, _ := bl.next()
			at.Usage = parseUsage(v)
		case "COLLECTIVE":
			// accepted, not separately modelled
		default:
			// unrecognised extension (X-...); skip its value if present
		}
	}

	return at, nil
}

func namesFromToken(v string) []string {
	if strings.HasPrefix(v, "(") {
		// oid lists separate elements with '$'; a qdescrs list
		// ( 'a' 'b' ) separates quoted names with spaces.
		var out []string
		for _, p := range splitOIDList(v) {
			for _, f := range strings.Fields(p) {
				out = append(out, strings.Trim(f, "'"))
			}
		}
		return out
	}
	if v == "" {
		return nil
	}
	return []string{v}
}

func stripSyntaxLength(v string) string {
	if i := strings.IndexByte(v, '{'); i >= 0 {
		return v[:i]
	}
	return v
}

func parseUsage(v string) Usage {
	switch v {
	case "directoryOperation":
		return UsageDirectoryOperation
	case "distributedOperation":
		return UsageDistributedOperation
	case "dSAOperation":
		return UsageDSAOperation
	default:
		return UsageUserApplications
	}
}

func normalizedDefinition(def string) string {
	return strings.Join(strings.Fields(def), " ")
}

// ParseObjectClass parses an RFC 4512 ObjectClassDescription.
func ParseObjectClass(def string) (ObjectClass, error) {
	l := newLexer(def)
	open, ok := l.next()
	if !ok || !strings.HasPrefix(open, "(") {
		return ObjectClass{}, fmt.Errorf("schema: object class definition must start with '(': %q", def)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(open, "("), ")")
	bl := newLexer(body)

	oidTok, ok := bl.next()
	if !ok {
		return ObjectClass{}, fmt.Errorf("schema: object class definition missing OID: %q", def)
	}
	oc := ObjectClass{OID: OID(oidTok), Kind: KindStructural, definition: normalizedDefinition(def)}

	for {
		kw, ok := bl.next()
		if !ok {
			break
		}
		switch kw {
		case "NAME":
			v, _ := bl.next()
			oc.Names = namesFromToken(v)
		case "DESC":
			v, _ := bl.next()
			oc.Desc = v
		case "OBSOLETE":
			oc.Obsolete = true
		case "SUP":
			v, _ := bl.next()
			oc.Sup = namesFromToken(v)
		case "ABSTRACT":
			oc.Kind = KindAbstract
		case "STRUCTURAL":
			oc.Kind = KindStructural
		case "AUXILIARY":
			oc.Kind = KindAuxiliary
		case "MUST":
			v, _ := bl.next()
			oc.Must = namesFromToken(v)
		case "MAY":
			v, _ := bl.next()
			oc.May = namesFromToken(v)
		default:
		}
	}

	return oc, nil
}
