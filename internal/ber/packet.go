package ber

import "fmt"

// Packet is a single decoded BER tagged-length-value item. Universal
// primitive packets carry a decoded native Value (bool, int64 or string)
// in addition to the raw Content octets; constructed packets carry
// Children instead. This mirrors the TLV tree shape every LDAP message
// is built from: a SEQUENCE of fields, some of which are themselves
// SEQUENCEs, application tags or context-specific choices.
type Packet struct {
	Tag         Tag
	Content     []byte
	Children    []*Packet
	Value       any
	Description string
}

func newPacket(tag Tag, desc string) *Packet {
	return &Packet{Tag: tag, Description: desc}
}

// AppendChild adds c as the next child of a constructed packet.
func (p *Packet) AppendChild(c *Packet) *Packet {
	p.Children = append(p.Children, c)
	return p
}

// Child returns the i'th child, or nil if there are not enough.
func (p *Packet) Child(i int) *Packet {
	if p == nil || i < 0 || i >= len(p.Children) {
		return nil
	}
	return p.Children[i]
}

// Bool returns the packet's content interpreted as a BOOLEAN. Universal
// BOOLEAN packets already carry a decoded Value; implicitly-tagged
// (application/context-specific) packets are decoded from Content on
// demand, since only the caller that chose the tag knows its underlying
// universal type.
func (p *Packet) Bool() (bool, error) {
	if b, ok := p.Value.(bool); ok {
		return b, nil
	}
	return decodeBoolean(p.Content)
}

// Int returns the packet's content interpreted as an INTEGER/ENUMERATED,
// decoding from Content for implicitly-tagged primitives. See Bool.
func (p *Packet) Int() (int64, error) {
	if i, ok := p.Value.(int64); ok {
		return i, nil
	}
	return decodeInteger(p.Content)
}

// String returns the primitive packet's value as a string (LDAP treats
// OCTET STRING as the universal text/bytes carrier).
func (p *Packet) String() string {
	if s, ok := p.Value.(string); ok {
		return s
	}
	return string(p.Content)
}

// NewSequence starts an empty constructed SEQUENCE packet.
func NewSequence(desc string) *Packet {
	return newPacket(TagSequenceConstructed, desc)
}

// NewSet starts an empty constructed SET packet.
func NewSet(desc string) *Packet {
	return newPacket(TagSetConstructed, desc)
}

// NewConstructed starts an empty constructed packet under an arbitrary tag
// (used for application-tagged protocol ops and context-specific choices).
func NewConstructed(tag Tag, desc string) *Packet {
	return newPacket(tag, desc)
}

// NewBoolean builds a primitive BOOLEAN packet.
func NewBoolean(tag Tag, v bool, desc string) *Packet {
	p := newPacket(tag, desc)
	p.Value = v
	return p
}

// NewInteger builds a primitive INTEGER/ENUMERATED packet.
func NewInteger(tag Tag, v int64, desc string) *Packet {
	p := newPacket(tag, desc)
	p.Value = v
	return p
}

// NewString builds a primitive OCTET STRING packet carrying text.
func NewString(tag Tag, v string, desc string) *Packet {
	p := newPacket(tag, desc)
	p.Value = v
	p.Content = []byte(v)
	return p
}

// NewOctetString builds a primitive OCTET STRING packet carrying bytes.
func NewOctetString(tag Tag, v []byte, desc string) *Packet {
	p := newPacket(tag, desc)
	p.Content = v
	return p
}

// NewNull builds a primitive NULL packet.
func NewNull(tag Tag, desc string) *Packet {
	return newPacket(tag, desc)
}

// Describe renders the packet's tag and description for debug logging.
func (p *Packet) Describe() string {
	return fmt.Sprintf("%s %q", p.Tag, p.Description)
}
