package ber

import (
	"encoding/binary"

	asn1 "github.com/go-asn1-ber/asn1-ber"
)

// Encode serialises p using the definite-length form only, as required
// for everything this implementation writes to the wire. The tag and
// length octets, and the concatenation of a constructed packet's
// children, are produced by go-asn1-ber/asn1-ber's own Packet.Bytes;
// only the primitive value octets are ours, via content below.
func Encode(p *Packet) []byte {
	return toASN1(p).Bytes()
}

func toASN1(p *Packet) *asn1.Packet {
	tagType := asn1.TypePrimitive
	if p.Tag.Constructed {
		tagType = asn1.TypeConstructed
	}

	out := asn1.Encode(asn1.Class(p.Tag.Class), tagType, asn1.Tag(p.Tag.Number), nil, p.Description)

	if p.Tag.Constructed {
		for _, c := range p.Children {
			out.AppendChild(toASN1(c))
		}
		return out
	}

	out.Data.Write(p.content())
	return out
}

// content renders a primitive packet's own payload octets. Constructed
// packets are handled directly in toASN1, which appends each encoded
// child instead of flattening them through here.
func (p *Packet) content() []byte {
	switch v := p.Value.(type) {
	case bool:
		return encodeBoolean(v)
	case int64:
		return encodeInteger(v)
	case int:
		return encodeInteger(int64(v))
	case string:
		return []byte(v)
	case nil:
		return p.Content
	default:
		return p.Content
	}
}

func encodeBoolean(b bool) []byte {
	if b {
		return []byte{0xFF}
	}
	return []byte{0x00}
}

// encodeInteger renders v as a minimal, sign-extended two's-complement
// big-endian byte string, the canonical BER INTEGER encoding.
func encodeInteger(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return minimalTwosComplement(buf, v < 0)
}

// minimalTwosComplement strips redundant leading sign-extension octets,
// keeping at least one octet and never flipping the represented sign.
func minimalTwosComplement(rep []byte, negative bool) []byte {
	start := 0
	for start < len(rep)-1 {
		if negative && rep[start] == 0xFF && rep[start+1]&0x80 != 0 {
			start++
			continue
		}
		if !negative && rep[start] == 0x00 && rep[start+1]&0x80 == 0 {
			start++
			continue
		}
		break
	}
	return rep[start:]
}
