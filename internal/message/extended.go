package message

import "github.com/georgib0y/ldapcore/internal/ber"

var (
	extendedNameTag  = ber.ContextSpecific(0, false)
	extendedValueTag = ber.ContextSpecific(1, false)
)

// ExtendedRequest is the generic extensible operation envelope used for
// StartTLS (1.3.6.1.4.1.1466.20037), whoami, password modify, and any
// other registered extension.
type ExtendedRequest struct {
	Name     string
	Value    []byte
	HasValue bool
}

func (e *ExtendedRequest) OpTag() ProtocolOpTag { return TagExtendedRequest }

func (e *ExtendedRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagExtendedRequest), "ExtendedRequest")
	p.AppendChild(ber.NewString(extendedNameTag, e.Name, "requestName"))
	if e.HasValue {
		p.AppendChild(ber.NewOctetString(extendedValueTag, e.Value, "requestValue"))
	}
	return p
}

func (e *ExtendedRequest) Decode(p *ber.Packet) error {
	if len(p.Children) < 1 {
		return malformedOp(p, "ExtendedRequest", 1)
	}
	e.Name = p.Children[0].String()
	if len(p.Children) > 1 {
		e.Value = []byte(p.Children[1].String())
		e.HasValue = true
	}
	return nil
}

var (
	extendedResponseNameTag  = ber.ContextSpecific(10, false)
	extendedResponseValueTag = ber.ContextSpecific(11, false)
)

type ExtendedResponse struct {
	Result
	Name     string
	HasName  bool
	Value    []byte
	HasValue bool
}

func (e *ExtendedResponse) OpTag() ProtocolOpTag { return TagExtendedResponse }

func (e *ExtendedResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagExtendedResponse), "ExtendedResponse")
	e.Result.encodeInto(p)
	if e.HasName {
		p.AppendChild(ber.NewString(extendedResponseNameTag, e.Name, "responseName"))
	}
	if e.HasValue {
		p.AppendChild(ber.NewOctetString(extendedResponseValueTag, e.Value, "responseValue"))
	}
	return p
}

func (e *ExtendedResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	e.Result = r

	for _, c := range p.Children[3:] {
		switch {
		case c.Tag.Equal(extendedResponseNameTag):
			e.Name = c.String()
			e.HasName = true
		case c.Tag.Equal(extendedResponseValueTag):
			e.Value = []byte(c.String())
			e.HasValue = true
		}
	}
	return nil
}

// IntermediateResponse delivers an interim item for an extended
// operation that streams multiple responses before its terminal one.
type IntermediateResponse struct {
	Name     string
	HasName  bool
	Value    []byte
	HasValue bool
}

func (i *IntermediateResponse) OpTag() ProtocolOpTag { return TagIntermediateResponse }

func (i *IntermediateResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagIntermediateResponse), "IntermediateResponse")
	if i.HasName {
		p.AppendChild(ber.NewString(extendedResponseNameTag, i.Name, "responseName"))
	}
	if i.HasValue {
		p.AppendChild(ber.NewOctetString(extendedResponseValueTag, i.Value, "responseValue"))
	}
	return p
}

func (i *IntermediateResponse) Decode(p *ber.Packet) error {
	for _, c := range p.Children {
		switch {
		case c.Tag.Equal(extendedResponseNameTag):
			i.Name = c.String()
			i.HasName = true
		case c.Tag.Equal(extendedResponseValueTag):
			i.Value = []byte(c.String())
			i.HasValue = true
		}
	}
	return nil
}
