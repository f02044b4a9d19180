package filter

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/ber"
)

// Filter CHOICE tags, RFC 4511 section 4.5.1.7.
const (
	tagAnd             = 0
	tagOr              = 1
	tagNot             = 2
	tagEqualityMatch   = 3
	tagSubstrings      = 4
	tagGreaterOrEqual  = 5
	tagLessOrEqual     = 6
	tagPresent         = 7
	tagApproxMatch     = 8
	tagExtensibleMatch = 9
)

const (
	tagSubstringInitial = 0
	tagSubstringAny     = 1
	tagSubstringFinal   = 2

	tagExtensibleRule    = 1
	tagExtensibleType    = 2
	tagExtensibleValue   = 3
	tagExtensibleDNAttrs = 4
)

func (f And) EncodeFilter() *ber.Packet {
	p := ber.NewConstructed(ber.ContextSpecific(tagAnd, true), "and")
	for _, c := range f {
		p.AppendChild(c.EncodeFilter())
	}
	return p
}

func (f Or) EncodeFilter() *ber.Packet {
	p := ber.NewConstructed(ber.ContextSpecific(tagOr, true), "or")
	for _, c := range f {
		p.AppendChild(c.EncodeFilter())
	}
	return p
}

func (f Not) EncodeFilter() *ber.Packet {
	p := ber.NewConstructed(ber.ContextSpecific(tagNot, true), "not")
	p.AppendChild(f.Filter.EncodeFilter())
	return p
}

func attributeValueAssertion(tag ber.Tag, desc, attr, value string) *ber.Packet {
	p := ber.NewConstructed(tag, desc)
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, attr, "attributeDesc"))
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, value, "assertionValue"))
	return p
}

func (f Equality) EncodeFilter() *ber.Packet {
	return attributeValueAssertion(ber.ContextSpecific(tagEqualityMatch, true), "equalityMatch", f.Attr, f.Value)
}

func (f GreaterOrEqual) EncodeFilter() *ber.Packet {
	return attributeValueAssertion(ber.ContextSpecific(tagGreaterOrEqual, true), "greaterOrEqual", f.Attr, f.Value)
}

func (f LessOrEqual) EncodeFilter() *ber.Packet {
	return attributeValueAssertion(ber.ContextSpecific(tagLessOrEqual, true), "lessOrEqual", f.Attr, f.Value)
}

func (f Approx) EncodeFilter() *ber.Packet {
	return attributeValueAssertion(ber.ContextSpecific(tagApproxMatch, true), "approxMatch", f.Attr, f.Value)
}

func (f Present) EncodeFilter() *ber.Packet {
	return ber.NewString(ber.ContextSpecific(tagPresent, false), f.Attr, "present")
}

func (f Substring) EncodeFilter() *ber.Packet {
	p := ber.NewConstructed(ber.ContextSpecific(tagSubstrings, true), "substrings")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, f.Attr, "type"))
	subs := ber.NewSequence("substrings")
	if f.HasInitial {
		subs.AppendChild(ber.NewString(ber.ContextSpecific(tagSubstringInitial, false), f.Initial, "initial"))
	}
	for _, a := range f.Any {
		subs.AppendChild(ber.NewString(ber.ContextSpecific(tagSubstringAny, false), a, "any"))
	}
	if f.HasFinal {
		subs.AppendChild(ber.NewString(ber.ContextSpecific(tagSubstringFinal, false), f.Final, "final"))
	}
	p.AppendChild(subs)
	return p
}

func (f Extensible) EncodeFilter() *ber.Packet {
	p := ber.NewConstructed(ber.ContextSpecific(tagExtensibleMatch, true), "extensibleMatch")
	if f.HasRule {
		p.AppendChild(ber.NewString(ber.ContextSpecific(tagExtensibleRule, false), f.Rule, "matchingRule"))
	}
	if f.HasType {
		p.AppendChild(ber.NewString(ber.ContextSpecific(tagExtensibleType, false), f.Type, "type"))
	}
	p.AppendChild(ber.NewString(ber.ContextSpecific(tagExtensibleValue, false), f.Value, "matchValue"))
	if f.DNAttributes {
		p.AppendChild(ber.NewBoolean(ber.ContextSpecific(tagExtensibleDNAttrs, false), true, "dnAttributes"))
	}
	return p
}

// DecodeFilter interprets a context-specific CHOICE packet (as produced
// while decoding a SearchRequest) as a Filter tree.
func DecodeFilter(p *ber.Packet) (Filter, error) {
	if p.Tag.Class != ber.ClassContextSpecific {
		return nil, fmt.Errorf("filter: unexpected tag %s", p.Tag)
	}

	switch p.Tag.Number {
	case tagAnd:
		children, err := decodeFilterList(p)
		if err != nil {
			return nil, err
		}
		return And(children), nil
	case tagOr:
		children, err := decodeFilterList(p)
		if err != nil {
			return nil, err
		}
		return Or(children), nil
	case tagNot:
		if len(p.Children) != 1 {
			return nil, fmt.Errorf("filter: not expects exactly one child, got %d", len(p.Children))
		}
		inner, err := DecodeFilter(p.Children[0])
		if err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil
	case tagEqualityMatch:
		attr, value, err := decodeAVA(p)
		if err != nil {
			return nil, err
		}
		return Equality{Attr: attr, Value: value}, nil
	case tagGreaterOrEqual:
		attr, value, err := decodeAVA(p)
		if err != nil {
			return nil, err
		}
		return GreaterOrEqual{Attr: attr, Value: value}, nil
	case tagLessOrEqual:
		attr, value, err := decodeAVA(p)
		if err != nil {
			return nil, err
		}
		return LessOrEqual{Attr: attr, Value: value}, nil
	case tagApproxMatch:
		attr, value, err := decodeAVA(p)
		if err != nil {
			return nil, err
		}
		return Approx{Attr: attr, Value: value}, nil
	case tagPresent:
		return Present{Attr: p.String()}, nil
	case tagSubstrings:
		return decodeSubstrings(p)
	case tagExtensibleMatch:
		return decodeExtensible(p)
	default:
		return nil, fmt.Errorf("filter: unknown filter choice tag %d", p.Tag.Number)
	}
}

func decodeFilterList(p *ber.Packet) ([]Filter, error) {
	out := make([]Filter, 0, len(p.Children))
	for _, c := range p.Children {
		f, err := DecodeFilter(c)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func decodeAVA(p *ber.Packet) (attr, value string, err error) {
	if len(p.Children) != 2 {
		return "", "", fmt.Errorf("filter: attributeValueAssertion expects 2 children, got %d", len(p.Children))
	}
	return p.Children[0].String(), p.Children[1].String(), nil
}

func decodeSubstrings(p *ber.Packet) (Filter, error) {
	if len(p.Children) != 2 {
		return nil, fmt.Errorf("filter: substrings expects 2 children, got %d", len(p.Children))
	}
	s := Substring{Attr: p.Children[0].String()}
	for _, c := range p.Children[1].Children {
		switch c.Tag.Number {
		case tagSubstringInitial:
			s.Initial = c.String()
			s.HasInitial = true
		case tagSubstringAny:
			s.Any = append(s.Any, c.String())
		case tagSubstringFinal:
			s.Final = c.String()
			s.HasFinal = true
		default:
			return nil, fmt.Errorf("filter: unknown substring choice tag %d", c.Tag.Number)
		}
	}
	return s, nil
}

func decodeExtensible(p *ber.Packet) (Filter, error) {
	var e Extensible
	for _, c := range p.Children {
		switch c.Tag.Number {
		case tagExtensibleRule:
			e.Rule = c.String()
			e.HasRule = true
		case tagExtensibleType:
			e.Type = c.String()
			e.HasType = true
		case tagExtensibleValue:
			e.Value = c.String()
		case tagExtensibleDNAttrs:
			b, err := c.Bool()
			if err != nil {
				return nil, err
			}
			e.DNAttributes = b
		default:
			return nil, fmt.Errorf("filter: unknown extensibleMatch choice tag %d", c.Tag.Number)
		}
	}
	return e, nil
}
