package message

import "github.com/georgib0y/ldapcore/internal/ber"

// Control is the generic out-of-band modifier attached to a request or
// response, identified by OID and optionally marked critical.
type Control struct {
	OID         string
	Criticality bool
	Value       []byte
	HasValue    bool
}

func (c Control) encode() *ber.Packet {
	p := ber.NewSequence("Control")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, c.OID, "controlType"))
	if c.Criticality {
		p.AppendChild(ber.NewBoolean(ber.TagBooleanPrimitive, true, "criticality"))
	}
	if c.HasValue {
		p.AppendChild(ber.NewOctetString(ber.TagOctetStringPrimitive, c.Value, "controlValue"))
	}
	return p
}

func decodeControl(p *ber.Packet) (Control, error) {
	if len(p.Children) < 1 {
		return Control{}, malformedOp(p, "Control", 1)
	}

	c := Control{OID: p.Children[0].String()}
	rest := p.Children[1:]

	if len(rest) > 0 && rest[0].Tag.Equal(ber.TagBooleanPrimitive) {
		b, err := rest[0].Bool()
		if err != nil {
			return Control{}, err
		}
		c.Criticality = b
		rest = rest[1:]
	}

	if len(rest) > 0 {
		c.Value = []byte(rest[0].String())
		c.HasValue = true
	}

	return c, nil
}

func encodeControls(controls []Control) *ber.Packet {
	p := ber.NewConstructed(controlsTag, "Controls")
	for _, c := range controls {
		p.AppendChild(c.encode())
	}
	return p
}

func decodeControls(p *ber.Packet) ([]Control, error) {
	var out []Control
	for _, c := range p.Children {
		ctrl, err := decodeControl(c)
		if err != nil {
			return nil, err
		}
		out = append(out, ctrl)
	}
	return out, nil
}
