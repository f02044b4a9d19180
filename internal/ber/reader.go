package ber

import (
	"io"

	asn1 "github.com/go-asn1-ber/asn1-ber"
)

// ReadPacket reads exactly one TLV from r, blocking on the underlying
// reader until a full packet has arrived (or it errors/closes). This is
// the connection's actual socket-read path; asn1.ReadPacket already
// accumulates partial reads internally, so there is no buffer-growth
// loop to maintain here.
func ReadPacket(r io.Reader) (*Packet, error) {
	raw, err := asn1.ReadPacket(r)
	if err != nil {
		return nil, err
	}
	return fromASN1(raw)
}
