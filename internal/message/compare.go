package message

import "github.com/georgib0y/ldapcore/internal/ber"

// AttributeValueAssertion is {desc, value}, used by compareRequest and by
// equality/ordering filter items.
type AttributeValueAssertion struct {
	Desc  string
	Value string
}

func (a AttributeValueAssertion) encode() *ber.Packet {
	p := ber.NewSequence("AttributeValueAssertion")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, a.Desc, "desc"))
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, a.Value, "value"))
	return p
}

func decodeAVA(p *ber.Packet) (AttributeValueAssertion, error) {
	if len(p.Children) != 2 {
		return AttributeValueAssertion{}, malformedOp(p, "AttributeValueAssertion", 2)
	}
	return AttributeValueAssertion{Desc: p.Children[0].String(), Value: p.Children[1].String()}, nil
}

type CompareRequest struct {
	Entry     string
	Assertion AttributeValueAssertion
}

func (c *CompareRequest) OpTag() ProtocolOpTag { return TagCompareRequest }

func (c *CompareRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagCompareRequest), "CompareRequest")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, c.Entry, "entry"))
	p.AppendChild(c.Assertion.encode())
	return p
}

func (c *CompareRequest) Decode(p *ber.Packet) error {
	if len(p.Children) != 2 {
		return malformedOp(p, "CompareRequest", 2)
	}
	c.Entry = p.Children[0].String()
	ava, err := decodeAVA(p.Children[1])
	if err != nil {
		return err
	}
	c.Assertion = ava
	return nil
}

type CompareResponse struct{ Result }

func (c *CompareResponse) OpTag() ProtocolOpTag { return TagCompareResponse }
func (c *CompareResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagCompareResponse), "CompareResponse")
	c.Result.encodeInto(p)
	return p
}
func (c *CompareResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	c.Result = r
	return nil
}
