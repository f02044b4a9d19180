package message

import "github.com/georgib0y/ldapcore/internal/ber"

// AbandonRequest is primitive: its content is the message ID to abandon,
// encoded as the tag's own INTEGER payload. There is no response.
type AbandonRequest struct{ MessageID int64 }

func (a *AbandonRequest) OpTag() ProtocolOpTag { return TagAbandonRequest }

func (a *AbandonRequest) Encode() *ber.Packet {
	return ber.NewInteger(ber.Application(uint64(TagAbandonRequest), false), a.MessageID, "AbandonRequest")
}

func (a *AbandonRequest) Decode(p *ber.Packet) error {
	id, err := p.Int()
	if err != nil {
		return err
	}
	a.MessageID = id
	return nil
}
