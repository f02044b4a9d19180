package message

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/ber"
)

// SearchScope is the searchRequest.scope enumeration.
type SearchScope int64

const (
	ScopeBaseObject   SearchScope = 0
	ScopeSingleLevel  SearchScope = 1
	ScopeWholeSubtree SearchScope = 2
)

// DerefAliases is the searchRequest.derefAliases enumeration.
type DerefAliases int64

const (
	NeverDerefAliases   DerefAliases = 0
	DerefInSearching    DerefAliases = 1
	DerefFindingBaseObj DerefAliases = 2
	DerefAlways         DerefAliases = 3
)

// Filter is satisfied by the wire encoder produced by the filter package;
// message stays ignorant of filter syntax and just asks for a packet.
type Filter interface {
	EncodeFilter() *ber.Packet
}

// RawFilter wraps an already-built filter packet, used when decoding a
// SearchRequest off the wire without re-parsing into an AST immediately.
type RawFilter struct{ Packet *ber.Packet }

func (f RawFilter) EncodeFilter() *ber.Packet { return f.Packet }

type SearchRequest struct {
	BaseObject   string
	Scope        SearchScope
	DerefAliases DerefAliases
	SizeLimit    int64
	TimeLimit    int64
	TypesOnly    bool
	Filter       Filter
	Attributes   []string
}

func (s *SearchRequest) OpTag() ProtocolOpTag { return TagSearchRequest }

func (s *SearchRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagSearchRequest), "SearchRequest")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, s.BaseObject, "baseObject"))
	p.AppendChild(ber.NewInteger(ber.TagEnumeratedPrimitive, int64(s.Scope), "scope"))
	p.AppendChild(ber.NewInteger(ber.TagEnumeratedPrimitive, int64(s.DerefAliases), "derefAliases"))
	p.AppendChild(ber.NewInteger(ber.TagIntegerPrimitive, s.SizeLimit, "sizeLimit"))
	p.AppendChild(ber.NewInteger(ber.TagIntegerPrimitive, s.TimeLimit, "timeLimit"))
	p.AppendChild(ber.NewBoolean(ber.TagBooleanPrimitive, s.TypesOnly, "typesOnly"))
	p.AppendChild(s.Filter.EncodeFilter())

	attrs := ber.NewSequence("attributes")
	for _, a := range s.Attributes {
		attrs.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, a, "attribute"))
	}
	p.AppendChild(attrs)

	return p
}

func (s *SearchRequest) Decode(p *ber.Packet) error {
	if len(p.Children) != 8 {
		return malformedOp(p, "SearchRequest", 8)
	}

	scope, err := p.Children[1].Int()
	if err != nil {
		return fmt.Errorf("message: SearchRequest scope: %w", err)
	}
	deref, err := p.Children[2].Int()
	if err != nil {
		return fmt.Errorf("message: SearchRequest derefAliases: %w", err)
	}
	sizeLim, err := p.Children[3].Int()
	if err != nil {
		return fmt.Errorf("message: SearchRequest sizeLimit: %w", err)
	}
	timeLim, err := p.Children[4].Int()
	if err != nil {
		return fmt.Errorf("message: SearchRequest timeLimit: %w", err)
	}
	typesOnly, err := p.Children[5].Bool()
	if err != nil {
		return fmt.Errorf("message: SearchRequest typesOnly: %w", err)
	}

	s.BaseObject = p.Children[0].String()
	s.Scope = SearchScope(scope)
	s.DerefAliases = DerefAliases(deref)
	s.SizeLimit = sizeLim
	s.TimeLimit = timeLim
	s.TypesOnly = typesOnly
	s.Filter = RawFilter{Packet: p.Children[6]}

	for _, a := range p.Children[7].Children {
		s.Attributes = append(s.Attributes, a.String())
	}

	return nil
}

// SearchResultEntry is one entry found by a search.
type SearchResultEntry struct {
	ObjectName string
	Attributes []PartialAttribute
}

func (s *SearchResultEntry) OpTag() ProtocolOpTag { return TagSearchResultEntry }

func (s *SearchResultEntry) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagSearchResultEntry), "SearchResultEntry")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, s.ObjectName, "objectName"))
	p.AppendChild(encodeAttributeList(s.Attributes))
	return p
}

func (s *SearchResultEntry) Decode(p *ber.Packet) error {
	if len(p.Children) != 2 {
		return malformedOp(p, "SearchResultEntry", 2)
	}
	s.ObjectName = p.Children[0].String()
	attrs, err := decodeAttributeList(p.Children[1])
	if err != nil {
		return err
	}
	s.Attributes = attrs
	return nil
}

// SearchResultReference carries one or more continuation URIs.
type SearchResultReference []string

func (s *SearchResultReference) OpTag() ProtocolOpTag { return TagSearchResultReference }

func (s *SearchResultReference) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagSearchResultReference), "SearchResultReference")
	for _, u := range *s {
		p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, u, "uri"))
	}
	return p
}

func (s *SearchResultReference) Decode(p *ber.Packet) error {
	for _, c := range p.Children {
		*s = append(*s, c.String())
	}
	return nil
}

// SearchResultDone terminates a search stream with a final result.
type SearchResultDone struct{ Result }

func (s *SearchResultDone) OpTag() ProtocolOpTag { return TagSearchResultDone }

func (s *SearchResultDone) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagSearchResultDone), "SearchResultDone")
	s.Result.encodeInto(p)
	return p
}

func (s *SearchResultDone) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	s.Result = r
	return nil
}
