package ldapcore

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/message"
)

// ConnectionError reports a transport failure: dial, read, write or TLS.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("ldapcore: %s: %s", e.Op, e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// OperationFailedError reports a well-formed operation the server
// rejected with a non-success LDAPResult.
type OperationFailedError struct {
	ResultCode        message.ResultCode
	DiagnosticMessage string
	MatchedDN         string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("ldapcore: %s: %s (matchedDN %q)", e.ResultCode, e.DiagnosticMessage, e.MatchedDN)
}

// ReferralError reports a referral result. The connection does not
// follow referrals automatically, so every referral result surfaces as
// this error.
type ReferralError struct{ URLs []string }

func (e *ReferralError) Error() string { return fmt.Sprintf("ldapcore: referral: %v", e.URLs) }

// TimeoutError reports a per-operation deadline expiring before a
// terminal response arrived; the operation was abandoned locally.
type TimeoutError struct{ MessageID int64 }

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ldapcore: operation %d timed out", e.MessageID)
}

// AbandonedError reports a waiter that was explicitly abandoned.
type AbandonedError struct{ MessageID int64 }

func (e *AbandonedError) Error() string {
	return fmt.Sprintf("ldapcore: operation %d abandoned", e.MessageID)
}

// TooManyOutstandingError reports exhaustion of free message IDs.
type TooManyOutstandingError struct{}

func (e *TooManyOutstandingError) Error() string { return "ldapcore: too many outstanding operations" }

// ConnectionClosedError reports a waiter failed because the connection
// transitioned to Closing/Closed before its response arrived.
type ConnectionClosedError struct{}

func (e *ConnectionClosedError) Error() string { return "ldapcore: connection closed" }

// SaslNegotiationFailedError wraps a SASL provider failure during bind.
type SaslNegotiationFailedError struct{ Err error }

func (e *SaslNegotiationFailedError) Error() string {
	return fmt.Sprintf("ldapcore: SASL negotiation failed: %s", e.Err)
}
func (e *SaslNegotiationFailedError) Unwrap() error { return e.Err }

// UnsupportedControlError reports a critical control this client or the
// server (per its advertised supportedControl) does not support.
type UnsupportedControlError struct{ OID string }

func (e *UnsupportedControlError) Error() string {
	return fmt.Sprintf("ldapcore: unsupported critical control %s", e.OID)
}

// InvalidStateError reports a request made while the connection's state
// forbids it.
type InvalidStateError struct {
	State State
	Op    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("ldapcore: cannot %s while connection is %s", e.Op, e.State)
}

// BindInProgressError reports a request rejected locally because a
// bind is currently outstanding on the connection; spec.md 4.6 allows
// only unbind, abandon and extendedRequest:StartTLS to proceed while
// one is in flight.
type BindInProgressError struct{ Op string }

func (e *BindInProgressError) Error() string {
	return fmt.Sprintf("ldapcore: cannot %s while a bind is in flight", e.Op)
}

// NotFoundError reports that Directory.Find/GetChild's search matched
// no entry.
type NotFoundError struct{ BaseDN string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ldapcore: no entry found under %q", e.BaseDN)
}
