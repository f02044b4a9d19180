package ldapcore

import "github.com/georgib0y/ldapcore/internal/message"

// event is one routed delivery for a pending operation: either a
// decoded protocol op with its controls, or a local failure (timeout,
// abandon, connection close).
type event struct {
	op       message.ProtocolOp
	controls []message.Control
	err      error
	terminal bool
}

// pendingOp is the per-message-ID waiter entry (spec.md 4.6's "pending
// table keyed by ID with a per-waiter single-response or multi-response
// sink"). ch is sized 1 for single-response operations and to the
// connection's search high-water mark for streaming ones; a full
// buffer stalls the reader loop, which is the backpressure spec.md 5
// describes.
type pendingOp struct {
	id   int64
	ch   chan event
	done bool
}

func newPendingOp(id int64, bufSize int) *pendingOp {
	return &pendingOp{id: id, ch: make(chan event, bufSize)}
}

func (p *pendingOp) deliverOp(op message.ProtocolOp, controls []message.Control, terminal bool) {
	p.ch <- event{op: op, controls: controls, terminal: terminal}
}

func (p *pendingOp) fail(err error) {
	p.ch <- event{err: err, terminal: true}
}

// isStreamingOp reports whether tag's responses are multi-valued
// (search) and therefore need a buffered, non-completing sink until
// the terminal searchResultDone arrives.
func isStreamingOp(tag message.ProtocolOpTag) bool {
	switch tag {
	case message.TagSearchResultEntry, message.TagSearchResultReference, message.TagSearchResultDone:
		return true
	default:
		return false
	}
}

// isTerminalResponse reports whether tag completes its pending
// operation (removing it from the table) as opposed to merely
// streaming an interim item into it.
func isTerminalResponse(tag message.ProtocolOpTag) bool {
	switch tag {
	case message.TagSearchResultEntry, message.TagSearchResultReference, message.TagIntermediateResponse:
		return false
	default:
		return true
	}
}
