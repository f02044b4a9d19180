package ber

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	asn1 "github.com/go-asn1-ber/asn1-ber"
)

const maxIntegerBytes = 8

// Decode parses one complete TLV off the front of data and returns the
// packet together with any bytes left over. If data does not yet hold a
// complete item, it returns a *NeedMoreBytesError; callers (typically the
// connection reader) should accumulate more input and retry rather than
// treating this as a hard failure.
//
// The tag/length walk and the recursion into constructed children is
// done by asn1.ReadPacket; this package reinterprets every primitive's
// content octets itself afterwards so the canonical-BER rules LDAP
// depends on (minimal BOOLEAN/INTEGER encodings, explicit overflow
// detection) are enforced the same way regardless of what the
// underlying library tolerates.
func Decode(data []byte) (*Packet, []byte, error) {
	r := bytes.NewReader(data)
	raw, err := asn1.ReadPacket(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil, &NeedMoreBytesError{N: 1}
		}
		return nil, nil, malformed("%s", err)
	}

	p, err := fromASN1(raw)
	if err != nil {
		return nil, nil, err
	}

	return p, data[len(data)-r.Len():], nil
}

// fromASN1 rebuilds this package's Packet tree from an asn1-ber Packet.
func fromASN1(raw *asn1.Packet) (*Packet, error) {
	tag := Tag{
		Class:       Class(raw.ClassType),
		Constructed: raw.TagType == asn1.TypeConstructed,
		Number:      uint64(raw.Tag),
	}
	p := &Packet{Tag: tag, Description: raw.Description}

	if tag.Constructed {
		for _, c := range raw.Children {
			child, err := fromASN1(c)
			if err != nil {
				return nil, err
			}
			p.Children = append(p.Children, child)
		}
		return p, nil
	}

	content := raw.Data.Bytes()
	if content == nil {
		// keep a zero-length value distinct from an absent one
		content = []byte{}
	}
	p.Content = content

	if tag.Class != ClassUniversal {
		// Context-specific/application primitives (e.g. the simple-auth
		// choice, or a substring assertion octet string) carry no
		// universal semantics; the protocol-model layer interprets Content.
		return p, nil
	}

	switch tag.Number {
	case TagBoolean:
		b, err := decodeBoolean(content)
		if err != nil {
			return nil, err
		}
		p.Value = b
	case TagInteger, TagEnumerated:
		i, err := decodeInteger(content)
		if err != nil {
			return nil, err
		}
		p.Value = i
	case TagOctetString, TagObjectID:
		p.Value = string(content)
	case TagNull:
		if len(content) != 0 {
			return nil, malformed("NULL with non-empty content")
		}
	}

	return p, nil
}

func decodeBoolean(content []byte) (bool, error) {
	if len(content) != 1 {
		return false, malformed("BOOLEAN content is %d octets, want 1", len(content))
	}
	switch content[0] {
	case 0x00:
		return false, nil
	case 0xFF:
		return true, nil
	default:
		// DER/canonical BER requires 0x00 or 0xFF; anything else is a
		// non-canonical BOOLEAN encoding we refuse to accept silently.
		return false, malformed("non-canonical BOOLEAN byte 0x%02X", content[0])
	}
}

func decodeInteger(content []byte) (int64, error) {
	if len(content) == 0 {
		return 0, malformed("INTEGER content is empty")
	}
	if len(content) > maxIntegerBytes {
		return 0, &IntegerOverflowError{Bytes: len(content)}
	}

	buf := make([]byte, 8)
	sign := byte(0x00)
	if content[0]&0x80 != 0 {
		sign = 0xFF
	}
	for i := range buf {
		buf[i] = sign
	}
	copy(buf[8-len(content):], content)

	return int64(binary.BigEndian.Uint64(buf)), nil
}
