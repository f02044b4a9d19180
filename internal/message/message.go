// Package message implements the LDAPv3 protocol model: the typed
// representation of every operation in RFC 4511 and the envelope that
// carries a message ID and controls around a protocol operation.
package message

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/ber"
)

// ProtocolOpTag is the application-class tag identifying an LDAPMessage's
// protocolOp choice, per RFC 4511 section 4.1.1.
type ProtocolOpTag uint64

const (
	TagBindRequest           ProtocolOpTag = 0
	TagBindResponse          ProtocolOpTag = 1
	TagUnbindRequest         ProtocolOpTag = 2
	TagSearchRequest         ProtocolOpTag = 3
	TagSearchResultEntry     ProtocolOpTag = 4
	TagSearchResultDone      ProtocolOpTag = 5
	TagModifyRequest         ProtocolOpTag = 6
	TagModifyResponse        ProtocolOpTag = 7
	TagAddRequest            ProtocolOpTag = 8
	TagAddResponse           ProtocolOpTag = 9
	TagDelRequest            ProtocolOpTag = 10
	TagDelResponse           ProtocolOpTag = 11
	TagModDNRequest          ProtocolOpTag = 12
	TagModDNResponse         ProtocolOpTag = 13
	TagCompareRequest        ProtocolOpTag = 14
	TagCompareResponse       ProtocolOpTag = 15
	TagAbandonRequest        ProtocolOpTag = 16
	TagSearchResultReference ProtocolOpTag = 19
	TagExtendedRequest       ProtocolOpTag = 23
	TagExtendedResponse      ProtocolOpTag = 24
	TagIntermediateResponse  ProtocolOpTag = 25
)

// ProtocolOp is satisfied by every request/response/notification variant.
// OpTag identifies which application tag to encode/expect; a protocol op
// whose tag is primitive (UnbindRequest, AbandonRequest) still implements
// Decode/Encode for symmetry, operating on an empty or primitive packet.
type ProtocolOp interface {
	OpTag() ProtocolOpTag
	Encode() *ber.Packet
	Decode(p *ber.Packet) error
}

// Envelope is the LDAPMessage structure: a client-allocated message ID,
// the operation, and any controls. ID 0 is reserved for unsolicited
// server notifications.
type Envelope struct {
	MessageID int64
	Op        ProtocolOp
	Controls  []Control
}

var controlsTag = ber.Tag{Class: ber.ClassContextSpecific, Constructed: true, Number: 0}

// Encode renders the full LDAPMessage SEQUENCE.
func (e Envelope) Encode() *ber.Packet {
	p := ber.NewSequence("LDAPMessage")
	p.AppendChild(ber.NewInteger(ber.TagIntegerPrimitive, e.MessageID, "messageID"))
	p.AppendChild(e.Op.Encode())
	if len(e.Controls) > 0 {
		p.AppendChild(encodeControls(e.Controls))
	}
	return p
}

// DecodeEnvelope parses one LDAPMessage, dispatching the protocolOp choice
// by its application tag.
func DecodeEnvelope(p *ber.Packet) (Envelope, error) {
	if len(p.Children) < 2 {
		return Envelope{}, fmt.Errorf("message: LDAPMessage has %d children, want at least 2", len(p.Children))
	}

	msgID, err := p.Children[0].Int()
	if err != nil {
		return Envelope{}, fmt.Errorf("message: decoding messageID: %w", err)
	}

	opPacket := p.Children[1]
	op, err := NewProtocolOp(ProtocolOpTag(opPacket.Tag.Number))
	if err != nil {
		return Envelope{}, err
	}
	if err := op.Decode(opPacket); err != nil {
		return Envelope{}, fmt.Errorf("message: decoding %T: %w", op, err)
	}

	env := Envelope{MessageID: msgID, Op: op}
	if len(p.Children) > 2 && p.Children[2].Tag.Equal(controlsTag) {
		env.Controls, err = decodeControls(p.Children[2])
		if err != nil {
			return Envelope{}, err
		}
	}

	return env, nil
}

// NewProtocolOp allocates the zero value of the protocol operation
// identified by tag, ready to have Decode called on it.
func NewProtocolOp(tag ProtocolOpTag) (ProtocolOp, error) {
	switch tag {
	case TagBindRequest:
		return &BindRequest{}, nil
	case TagBindResponse:
		return &BindResponse{}, nil
	case TagUnbindRequest:
		return &UnbindRequest{}, nil
	case TagSearchRequest:
		return &SearchRequest{}, nil
	case TagSearchResultEntry:
		return &SearchResultEntry{}, nil
	case TagSearchResultDone:
		return &SearchResultDone{}, nil
	case TagModifyRequest:
		return &ModifyRequest{}, nil
	case TagModifyResponse:
		return &ModifyResponse{}, nil
	case TagAddRequest:
		return &AddRequest{}, nil
	case TagAddResponse:
		return &AddResponse{}, nil
	case TagDelRequest:
		return &DelRequest{}, nil
	case TagDelResponse:
		return &DelResponse{}, nil
	case TagModDNRequest:
		return &ModDNRequest{}, nil
	case TagModDNResponse:
		return &ModDNResponse{}, nil
	case TagCompareRequest:
		return &CompareRequest{}, nil
	case TagCompareResponse:
		return &CompareResponse{}, nil
	case TagAbandonRequest:
		return &AbandonRequest{}, nil
	case TagSearchResultReference:
		return &SearchResultReference{}, nil
	case TagExtendedRequest:
		return &ExtendedRequest{}, nil
	case TagExtendedResponse:
		return &ExtendedResponse{}, nil
	case TagIntermediateResponse:
		return &IntermediateResponse{}, nil
	default:
		return nil, fmt.Errorf("message: unknown protocolOp tag %d", tag)
	}
}

func appTag(t ProtocolOpTag) ber.Tag {
	return ber.Application(uint64(t), true)
}

// AttributeValue is a single attribute value octet string.
type AttributeValue = string

// PartialAttribute is {type, values} as it appears in AddRequest entries,
// search result entries, and modify Change elements.
type PartialAttribute struct {
	Type   string
	Values []AttributeValue
}

func (a PartialAttribute) encode() *ber.Packet {
	p := ber.NewSequence("PartialAttribute")
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, a.Type, "type"))
	vals := ber.NewSet("vals")
	for _, v := range a.Values {
		vals.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, v, "value"))
	}
	p.AppendChild(vals)
	return p
}

func decodePartialAttribute(p *ber.Packet) (PartialAttribute, error) {
	if len(p.Children) != 2 {
		return PartialAttribute{}, fmt.Errorf("message: PartialAttribute has %d children, want 2", len(p.Children))
	}

	a := PartialAttribute{Type: p.Children[0].String()}
	for _, v := range p.Children[1].Children {
		a.Values = append(a.Values, v.String())
	}
	return a, nil
}

func encodeAttributeList(attrs []PartialAttribute) *ber.Packet {
	p := ber.NewSequence("AttributeList")
	for _, a := range attrs {
		p.AppendChild(a.encode())
	}
	return p
}

func decodeAttributeList(p *ber.Packet) ([]PartialAttribute, error) {
	var attrs []PartialAttribute
	for _, c := range p.Children {
		a, err := decodePartialAttribute(c)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}
