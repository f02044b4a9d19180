package message

import "github.com/georgib0y/ldapcore/internal/ber"

type AddRequest struct {
	Entry      string
	Attributes []PartialAttribute
}

func (a *AddRequest) OpTag() ProtocolOpTag { return TagAddRequest }

func (a *AddRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagAddRequest), "AddRequest")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, a.Entry, "entry"))
	p.AppendChild(encodeAttributeList(a.Attributes))
	return p
}

func (a *AddRequest) Decode(p *ber.Packet) error {
	if len(p.Children) != 2 {
		return malformedOp(p, "AddRequest", 2)
	}
	a.Entry = p.Children[0].String()
	attrs, err := decodeAttributeList(p.Children[1])
	if err != nil {
		return err
	}
	a.Attributes = attrs
	return nil
}

type AddResponse struct{ Result }

func (a *AddResponse) OpTag() ProtocolOpTag { return TagAddResponse }
func (a *AddResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagAddResponse), "AddResponse")
	a.Result.encodeInto(p)
	return p
}
func (a *AddResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	a.Result = r
	return nil
}

// DelRequest is the primitive (no children) delRequest: the DN is carried
// in the tag's own content rather than a sub-sequence.
type DelRequest struct{ Entry string }

func (d *DelRequest) OpTag() ProtocolOpTag { return TagDelRequest }

func (d *DelRequest) Encode() *ber.Packet {
	return ber.NewString(ber.Application(uint64(TagDelRequest), false), d.Entry, "DelRequest")
}

func (d *DelRequest) Decode(p *ber.Packet) error {
	d.Entry = p.String()
	return nil
}

type DelResponse struct{ Result }

func (d *DelResponse) OpTag() ProtocolOpTag { return TagDelResponse }
func (d *DelResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagDelResponse), "DelResponse")
	d.Result.encodeInto(p)
	return p
}
func (d *DelResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	d.Result = r
	return nil
}

type ModDNRequest struct {
	Entry          string
	NewRDN         string
	DeleteOldRDN   bool
	NewSuperior    string
	HasNewSuperior bool
}

var newSuperiorTag = ber.ContextSpecific(0, false)

func (m *ModDNRequest) OpTag() ProtocolOpTag { return TagModDNRequest }

func (m *ModDNRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagModDNRequest), "ModDNRequest")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, m.Entry, "entry"))
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, m.NewRDN, "newrdn"))
	p.AppendChild(ber.NewBoolean(ber.TagBooleanPrimitive, m.DeleteOldRDN, "deleteoldrdn"))
	if m.HasNewSuperior {
		p.AppendChild(ber.NewString(newSuperiorTag, m.NewSuperior, "newSuperior"))
	}
	return p
}

func (m *ModDNRequest) Decode(p *ber.Packet) error {
	if len(p.Children) < 3 {
		return malformedOp(p, "ModDNRequest", 3)
	}
	del, err := p.Children[2].Bool()
	if err != nil {
		return err
	}
	m.Entry = p.Children[0].String()
	m.NewRDN = p.Children[1].String()
	m.DeleteOldRDN = del
	if len(p.Children) > 3 {
		m.NewSuperior = p.Children[3].String()
		m.HasNewSuperior = true
	}
	return nil
}

type ModDNResponse struct{ Result }

func (m *ModDNResponse) OpTag() ProtocolOpTag { return TagModDNResponse }
func (m *ModDNResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagModDNResponse), "ModDNResponse")
	m.Result.encodeInto(p)
	return p
}
func (m *ModDNResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	m.Result = r
	return nil
}
