package message

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/ber"
)

// ModOperation is the modifyRequest.changes.operation enumeration.
type ModOperation int64

const (
	ModAdd     ModOperation = 0
	ModDelete  ModOperation = 1
	ModReplace ModOperation = 2
)

func (op ModOperation) String() string {
	switch op {
	case ModAdd:
		return "add"
	case ModDelete:
		return "delete"
	case ModReplace:
		return "replace"
	default:
		return fmt.Sprintf("modOperation(%d)", int64(op))
	}
}

// Change is one atomic element of a modifyRequest's change list.
type Change struct {
	Operation    ModOperation
	Modification PartialAttribute
}

func (c Change) encode() *ber.Packet {
	p := ber.NewSequence("change")
	p.AppendChild(ber.NewInteger(ber.TagEnumeratedPrimitive, int64(c.Operation), "operation"))
	p.AppendChild(c.Modification.encode())
	return p
}

func decodeChange(p *ber.Packet) (Change, error) {
	if len(p.Children) != 2 {
		return Change{}, malformedOp(p, "change", 2)
	}
	op, err := p.Children[0].Int()
	if err != nil {
		return Change{}, fmt.Errorf("message: change operation: %w", err)
	}
	mod, err := decodePartialAttribute(p.Children[1])
	if err != nil {
		return Change{}, err
	}
	return Change{Operation: ModOperation(op), Modification: mod}, nil
}

type ModifyRequest struct {
	Object  string
	Changes []Change
}

func (m *ModifyRequest) OpTag() ProtocolOpTag { return TagModifyRequest }

func (m *ModifyRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagModifyRequest), "ModifyRequest")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, m.Object, "object"))
	changes := ber.NewSequence("changes")
	for _, c := range m.Changes {
		changes.AppendChild(c.encode())
	}
	p.AppendChild(changes)
	return p
}

func (m *ModifyRequest) Decode(p *ber.Packet) error {
	if len(p.Children) != 2 {
		return malformedOp(p, "ModifyRequest", 2)
	}
	m.Object = p.Children[0].String()
	for _, c := range p.Children[1].Children {
		ch, err := decodeChange(c)
		if err != nil {
			return err
		}
		m.Changes = append(m.Changes, ch)
	}
	return nil
}

type ModifyResponse struct{ Result }

func (m *ModifyResponse) OpTag() ProtocolOpTag { return TagModifyResponse }

func (m *ModifyResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagModifyResponse), "ModifyResponse")
	m.Result.encodeInto(p)
	return p
}

func (m *ModifyResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	m.Result = r
	return nil
}
