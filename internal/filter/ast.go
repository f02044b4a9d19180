// Package filter parses the two textual LDAP filter syntaxes described in
// RFC 4515 and a simplified infix notation into one shared AST, and
// renders that AST back to the RFC 4515 canonical form.
package filter

import "github.com/georgib0y/ldapcore/internal/ber"

// Filter is any node of the filter tree. EncodeFilter lets a Filter be
// used directly as a SearchRequest's filter without the message package
// knowing anything about filter syntax.
type Filter interface {
	EncodeFilter() *ber.Packet
	render(buf *stringBuilder)
}

// And matches when every child filter matches (RFC 4511 filter tag 0).
type And []Filter

// Or matches when any child filter matches (tag 1).
type Or []Filter

// Not negates its single child filter (tag 2).
type Not struct{ Filter Filter }

// Equality is attr=value (tag 3).
type Equality struct{ Attr, Value string }

// Substring is attr=[initial]*any*[final] (tag 4).
type Substring struct {
	Attr       string
	Initial    string
	HasInitial bool
	Any        []string
	Final      string
	HasFinal   bool
}

// GreaterOrEqual is attr>=value (tag 5).
type GreaterOrEqual struct{ Attr, Value string }

// LessOrEqual is attr<=value (tag 6).
type LessOrEqual struct{ Attr, Value string }

// Present is attr=* (tag 7).
type Present struct{ Attr string }

// Approx is attr~=value (tag 8).
type Approx struct{ Attr, Value string }

// Extensible is the extensible-match filter item (tag 9):
// [attr][:dn][:rule]:=value, requiring at least one of attr/rule.
type Extensible struct {
	Rule         string
	HasRule      bool
	Type         string
	HasType      bool
	Value        string
	DNAttributes bool
}

type stringBuilder struct {
	b []byte
}

func (s *stringBuilder) writeByte(b byte)       { s.b = append(s.b, b) }
func (s *stringBuilder) writeString(str string) { s.b = append(s.b, str...) }
func (s *stringBuilder) String() string         { return string(s.b) }

// RenderCanonical renders f in the canonical RFC 4515 form: AND/OR
// children in source order, NOT applied only where explicit.
func RenderCanonical(f Filter) string {
	var sb stringBuilder
	f.render(&sb)
	return sb.String()
}
