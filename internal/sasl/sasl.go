// Package sasl declares the external SASL provider contract the
// connection core drives during a SASL bind (spec.md section 6); it
// implements no mechanism itself.
package sasl

// Provider negotiates one SASL mechanism for a single bind. The
// connection core calls Start once, then Step for each server
// challenge until the bind completes, then Complete.
type Provider interface {
	// Start begins negotiation for mech against host, returning an
	// optional initial response to send with the bindRequest.
	Start(mech, host string) (initialResponse []byte, err error)
	// Step computes the response to one server challenge.
	Step(challenge []byte) (response []byte, err error)
	// Complete is called once the server reports saslBindInProgress no
	// longer, to let the provider release or verify session state.
	Complete() error
}

// NegotiationError wraps a provider failure with the mechanism name,
// surfaced to callers as SaslNegotiationFailed.
type NegotiationError struct {
	Mechanism string
	Err       error
}

func (e *NegotiationError) Error() string {
	return "sasl: " + e.Mechanism + " negotiation failed: " + e.Err.Error()
}

func (e *NegotiationError) Unwrap() error { return e.Err }

// External is the zero-configuration EXTERNAL mechanism (RFC 4422
// appendix A) for ldapi:// Unix-domain-socket binds: the server derives
// the identity from the transport (peer credentials), so both the
// initial response and every challenge response are empty. The
// connection core does not select it by itself, not even for ldapi://;
// it is used only when passed to a SASL bind like any other Provider.
type External struct{}

func (External) Start(mech, host string) ([]byte, error) { return nil, nil }
func (External) Step(challenge []byte) ([]byte, error)   { return nil, nil }
func (External) Complete() error                         { return nil }
