package ldapcore

import (
	"time"

	"github.com/georgib0y/ldapcore/internal/message"
)

// SearchCursor streams one search's results. Next blocks until the
// next entry/reference arrives or the search completes; callers should
// keep calling Next until it returns false, then check Err.
type SearchCursor struct {
	conn     *Conn
	waiter   *pendingOp
	deadline time.Time

	entry       *message.SearchResultEntry
	reference   message.SearchResultReference
	controls    []message.Control
	doneResult  message.Result
	doneControl []message.Control

	err    error
	done   bool
	closed bool
}

// Next advances the cursor, returning false once the stream is
// exhausted (check Err) or a terminal error occurred.
func (s *SearchCursor) Next() bool {
	if s.done {
		return false
	}

	op, controls, err := s.conn.awaitSingle(s.waiter, s.deadline)
	if err != nil {
		s.err = err
		s.done = true
		return false
	}

	switch v := op.(type) {
	case *message.SearchResultEntry:
		s.entry, s.reference, s.controls = v, nil, controls
		return true

	case *message.SearchResultReference:
		s.entry, s.reference, s.controls = nil, *v, controls
		return true

	case *message.SearchResultDone:
		s.done = true
		s.doneResult = v.Result
		s.doneControl = controls
		if v.Result.Code != message.Success {
			s.err = resultError(v.Result)
		}
		return false

	default:
		s.done = true
		s.err = &message.ProtocolError{Op: "search", Msg: "unexpected response type"}
		return false
	}
}

// Entry returns the current result entry, or nil if the current item
// is a referral.
func (s *SearchCursor) Entry() *message.SearchResultEntry { return s.entry }

// Reference returns the current search result reference, or nil if the
// current item is an entry.
func (s *SearchCursor) Reference() message.SearchResultReference { return s.reference }

// Controls returns the controls carried on the current item.
func (s *SearchCursor) Controls() []message.Control { return s.controls }

// Err returns the error that ended iteration, if any.
func (s *SearchCursor) Err() error { return s.err }

// DoneControls returns the controls attached to the terminal
// searchResultDone, available once Next has returned false.
func (s *SearchCursor) DoneControls() []message.Control { return s.doneControl }

// Close abandons the search if it has not already completed.
func (s *SearchCursor) Close() error {
	if s.closed || s.done {
		return nil
	}
	s.closed = true
	return s.conn.Abandon(s.waiter.id)
}

// Collect drains the cursor into a slice of entries, discarding
// references; for callers who don't need streaming.
func (s *SearchCursor) Collect() ([]*message.SearchResultEntry, error) {
	var entries []*message.SearchResultEntry
	for s.Next() {
		if e := s.Entry(); e != nil {
			entries = append(entries, e)
		}
	}
	return entries, s.Err()
}
