package message

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/ber"
)

var (
	simpleAuthTag = ber.ContextSpecific(0, false)
	saslAuthTag   = ber.ContextSpecific(3, true)
)

// SaslCredentials carries a SASL mechanism name and an optional initial
// response, per RFC 4511 4.2's AuthenticationChoice.sasl.
type SaslCredentials struct {
	Mechanism      string
	Credentials    []byte
	HasCredentials bool
}

// BindRequest is the simple or SASL bind operation. Exactly one of
// Simple/Sasl is meaningful, selected by Sasl.Mechanism == "".
type BindRequest struct {
	Version int64
	Name    string
	Simple  string
	Sasl    SaslCredentials
}

func (b *BindRequest) OpTag() ProtocolOpTag { return TagBindRequest }

func (b *BindRequest) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagBindRequest), "BindRequest")
	p.AppendChild(ber.NewInteger(ber.TagIntegerPrimitive, b.Version, "version"))
	p.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, b.Name, "name"))

	if b.Sasl.Mechanism != "" {
		sasl := ber.NewConstructed(saslAuthTag, "sasl")
		sasl.AppendChild(ber.NewString(ber.TagOctetStringPrimitive, b.Sasl.Mechanism, "mechanism"))
		if b.Sasl.HasCredentials {
			sasl.AppendChild(ber.NewOctetString(ber.TagOctetStringPrimitive, b.Sasl.Credentials, "credentials"))
		}
		p.AppendChild(sasl)
	} else {
		p.AppendChild(ber.NewString(simpleAuthTag, b.Simple, "simple"))
	}

	return p
}

func (b *BindRequest) Decode(p *ber.Packet) error {
	if len(p.Children) != 3 {
		return malformedOp(p, "BindRequest", 3)
	}

	v, err := p.Children[0].Int()
	if err != nil {
		return fmt.Errorf("message: BindRequest version: %w", err)
	}
	b.Version = v
	b.Name = p.Children[1].String()

	choice := p.Children[2]
	switch {
	case choice.Tag.Equal(simpleAuthTag):
		b.Simple = choice.String()
	case choice.Tag.Equal(saslAuthTag):
		if len(choice.Children) < 1 {
			return fmt.Errorf("message: BindRequest sasl choice has no mechanism")
		}
		b.Sasl.Mechanism = choice.Children[0].String()
		if len(choice.Children) > 1 {
			b.Sasl.Credentials = []byte(choice.Children[1].String())
			b.Sasl.HasCredentials = true
		}
	default:
		return fmt.Errorf("message: unsupported BindRequest authentication choice %s", choice.Tag)
	}

	return nil
}

// BindResponse carries the bind result plus an optional SASL server
// credentials field (RFC 4511 4.2.2).
type BindResponse struct {
	Result
	ServerSaslCreds    []byte
	HasServerSaslCreds bool
}

var serverSaslCredsTag = ber.ContextSpecific(7, false)

func (b *BindResponse) OpTag() ProtocolOpTag { return TagBindResponse }

func (b *BindResponse) Encode() *ber.Packet {
	p := ber.NewConstructed(appTag(TagBindResponse), "BindResponse")
	b.Result.encodeInto(p)
	if b.HasServerSaslCreds {
		p.AppendChild(ber.NewOctetString(serverSaslCredsTag, b.ServerSaslCreds, "serverSaslCreds"))
	}
	return p
}

func (b *BindResponse) Decode(p *ber.Packet) error {
	r, err := decodeResult(p)
	if err != nil {
		return err
	}
	b.Result = r

	for _, c := range p.Children {
		if c.Tag.Equal(serverSaslCredsTag) {
			b.ServerSaslCreds = []byte(c.String())
			b.HasServerSaslCreds = true
		}
	}
	return nil
}

// UnbindRequest has no content; the server sends no response.
type UnbindRequest struct{}

func (u *UnbindRequest) OpTag() ProtocolOpTag { return TagUnbindRequest }

func (u *UnbindRequest) Encode() *ber.Packet {
	return ber.NewConstructed(ber.Application(uint64(TagUnbindRequest), false), "UnbindRequest")
}

func (u *UnbindRequest) Decode(p *ber.Packet) error { return nil }
