package message

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/ber"
)

// ProtocolError reports a message that does not conform to RFC 4511's
// structure for the operation in question.
type ProtocolError struct {
	Op  string
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("message: malformed %s: %s", e.Op, e.Msg)
}

func malformedOp(p *ber.Packet, op string, wantChildren int) error {
	return &ProtocolError{Op: op, Msg: fmt.Sprintf("has %d children, want %d", len(p.Children), wantChildren)}
}
