// Package ldapcore is the public surface of the LDAPv3 client core:
// dialing a connection, driving bind/search/add/delete/modify/compare
// over it, and the directory-object convenience layer built on top.
package ldapcore

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/georgib0y/ldapcore/internal/ber"
	"github.com/georgib0y/ldapcore/internal/filter"
	"github.com/georgib0y/ldapcore/internal/message"
	"github.com/georgib0y/ldapcore/internal/sasl"
	"github.com/google/uuid"
)

// UnsolicitedHandler is called for every ID=0 notification the server
// sends, including (but not limited to) the disconnect notice, which
// the connection itself also reacts to by closing.
type UnsolicitedHandler func(oid string, value []byte, hasValue bool)

// Conn is one LDAPv3 connection: a single writer serialising outbound
// frames, a single reader routing inbound frames to per-message-ID
// waiters, and the lifecycle state machine of spec.md 4.6. The zero
// value is not usable; construct with Dial.
type Conn struct {
	id     uuid.UUID
	cfg    Config
	conn   net.Conn
	logger *log.Logger

	writeMu sync.Mutex

	stateMu sync.Mutex
	state   State

	pendingMu sync.Mutex
	pending   map[int64]*pendingOp
	nextID    int64

	bindMu       sync.Mutex // held for the duration of one in-flight bind
	bindInFlight atomic.Bool

	controlsMu        sync.Mutex
	controlsProbed    bool
	supportedControls map[string]bool

	unsolicited UnsolicitedHandler

	readerDone chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// Dial opens a transport to uri (ldap://, ldaps:// or ldapi://) and
// starts the connection's reader loop. The returned Conn is Open; Bind
// transitions it to Bound.
func Dial(uri string, opts ...Option) (*Conn, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	transport, host, err := dialTransport(uri, cfg.dialTimeout)
	if err != nil {
		return nil, err
	}
	if cfg.saslHost == "" {
		cfg.saslHost = host
	}

	return newConn(transport, cfg), nil
}

// NewConn wraps an already-connected transport directly, for callers
// (and tests) that built the net.Conn themselves.
func NewConn(transport net.Conn, opts ...Option) (*Conn, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newConn(transport, cfg), nil
}

func newConn(transport net.Conn, cfg Config) *Conn {
	id := uuid.New()
	c := &Conn{
		id:         id,
		cfg:        cfg,
		conn:       transport,
		logger:     log.New(os.Stderr, fmt.Sprintf("ldapcore[%s]: ", id), log.LstdFlags),
		state:      Open,
		pending:    map[int64]*pendingOp{},
		nextID:     1,
		readerDone: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// ID returns the connection's locally-generated correlation identifier,
// used in its own log lines and available to callers that want to tie
// application-level logging to a specific connection.
func (c *Conn) ID() uuid.UUID { return c.id }

// OnUnsolicited registers h to be called for every ID=0 notification.
func (c *Conn) OnUnsolicited(h UnsolicitedHandler) { c.unsolicited = h }

// State returns the connection's current lifecycle state.
func (c *Conn) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Conn) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// allocID returns the next free message ID, skipping 0 and wrapping on
// overflow, or TooManyOutstandingError if every ID up to a full cycle
// is still outstanding (spec.md 4.6).
func (c *Conn) allocID() (int64, error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	start := c.nextID
	for {
		id := c.nextID
		c.nextID++
		if c.nextID <= 0 {
			c.nextID = 1
		}
		if _, outstanding := c.pending[id]; !outstanding {
			return id, nil
		}
		if c.nextID == start {
			return 0, &TooManyOutstandingError{}
		}
	}
}

// requireState fails op locally (before any I/O) if the connection is
// not in one of the allowed states.
func (c *Conn) requireState(op string, allowed ...State) error {
	s := c.State()
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return &InvalidStateError{State: s, Op: op}
}

// requireNoBindInFlight fails op locally if a bind is currently
// outstanding on the connection (spec.md 4.6); Bind and SASLBind hold
// bindInFlight for the duration of their own round trip, and every
// request other than unbind, abandon and StartTLS must check this
// before proceeding.
func (c *Conn) requireNoBindInFlight(op string) error {
	if c.bindInFlight.Load() {
		return &BindInProgressError{Op: op}
	}
	return nil
}

// send allocates a message ID, registers a pendingOp with bufSize slots,
// writes the envelope and returns the waiter for the caller to drain.
func (c *Conn) send(op message.ProtocolOp, controls []message.Control, bufSize int) (*pendingOp, error) {
	if err := c.checkControlsCriticality(controls); err != nil {
		return nil, err
	}

	id, err := c.allocID()
	if err != nil {
		return nil, err
	}

	waiter := newPendingOp(id, bufSize)
	c.pendingMu.Lock()
	c.pending[id] = waiter
	c.pendingMu.Unlock()

	env := message.Envelope{MessageID: id, Op: op, Controls: controls}

	c.writeMu.Lock()
	werr := writeEnvelope(c.conn, env)
	c.writeMu.Unlock()

	if werr != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, &ConnectionError{Op: "write", Err: werr}
	}

	return waiter, nil
}

// checkControlsCriticality fails locally, before anything is written to
// the wire, if controls carries a critical control whose OID is absent
// from the root DSE's advertised supportedControl list (spec.md 4.6:
// "a critical control unknown to the client fails locally before
// sending"). Non-critical controls are never checked.
func (c *Conn) checkControlsCriticality(controls []message.Control) error {
	var critical []string
	for _, ctl := range controls {
		if ctl.Criticality {
			critical = append(critical, ctl.OID)
		}
	}
	if len(critical) == 0 {
		return nil
	}

	supported, err := c.supportedControlOIDs()
	if err != nil {
		return err
	}
	for _, oid := range critical {
		if !supported[oid] {
			return &UnsupportedControlError{OID: oid}
		}
	}
	return nil
}

// supportedControlOIDs returns the server's advertised supportedControl
// OIDs from the root DSE, probing it once and caching the result for
// the lifetime of the connection.
func (c *Conn) supportedControlOIDs() (map[string]bool, error) {
	c.controlsMu.Lock()
	defer c.controlsMu.Unlock()

	if c.controlsProbed {
		return c.supportedControls, nil
	}

	set, err := c.probeSupportedControls()
	if err != nil {
		return nil, err
	}

	c.supportedControls = set
	c.controlsProbed = true
	return set, nil
}

// probeSupportedControls issues a base-scoped search of the root DSE
// (RFC 4512 5.1) for its supportedControl attribute. It is called with
// no controls of its own, so it never re-enters the criticality check
// above.
func (c *Conn) probeSupportedControls() (map[string]bool, error) {
	req := &message.SearchRequest{
		BaseObject: "",
		Scope:      message.ScopeBaseObject,
		Filter:     filter.Present{Attr: "objectClass"},
		Attributes: []string{"supportedControl"},
	}

	cur, err := c.Search(req, nil)
	if err != nil {
		return nil, err
	}
	entries, err := cur.Collect()
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	if len(entries) > 0 {
		for _, attr := range entries[0].Attributes {
			if attr.Type == "supportedControl" {
				for _, v := range attr.Values {
					set[v] = true
				}
			}
		}
	}
	return set, nil
}

// sendUnackd writes op with no message-ID tracking, for unbindRequest
// and abandonRequest which never get a response.
func (c *Conn) sendUnackd(op message.ProtocolOp, id int64) error {
	env := message.Envelope{MessageID: id, Op: op}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := writeEnvelope(c.conn, env); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	return nil
}

func writeEnvelope(w io.Writer, env message.Envelope) error {
	p := env.Encode()
	_, err := w.Write(ber.Encode(p))
	return err
}

// awaitSingle blocks for the one terminal event on waiter, honouring
// deadline (the zero Time means no deadline) by sending an abandon and
// failing locally with TimeoutError if it elapses first.
func (c *Conn) awaitSingle(waiter *pendingOp, deadline time.Time) (message.ProtocolOp, []message.Control, error) {
	if deadline.IsZero() {
		ev := <-waiter.ch
		return ev.op, ev.controls, ev.err
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case ev := <-waiter.ch:
		return ev.op, ev.controls, ev.err
	case <-timer.C:
		c.Abandon(waiter.id)
		return nil, nil, &TimeoutError{MessageID: waiter.id}
	}
}

func (c *Conn) opDeadline() time.Time {
	if c.cfg.opTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.cfg.opTimeout)
}

// Abandon sends an abandonRequest for id and immediately fails and
// removes its waiter with AbandonedError; any late response for id is
// discarded by the reader loop (spec.md 4.6).
func (c *Conn) Abandon(id int64) error {
	c.pendingMu.Lock()
	waiter, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	if !ok {
		return nil // already completed: a no-op per spec.md 5
	}
	waiter.fail(&AbandonedError{MessageID: id})

	abandonID, err := c.allocID()
	if err != nil {
		return err
	}
	return c.sendUnackd(&message.AbandonRequest{MessageID: id}, abandonID)
}

// Close transitions the connection through Closing to Closed, flushing
// an unbindRequest and failing every outstanding waiter with
// ConnectionClosedError (spec.md 4.6).
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.setState(Closing)

		id, err := c.allocID()
		if err == nil {
			_ = c.sendUnackd(&message.UnbindRequest{}, id)
		}

		c.closeErr = c.conn.Close()
		<-c.readerDone

		c.pendingMu.Lock()
		for id, w := range c.pending {
			w.fail(&ConnectionClosedError{})
			delete(c.pending, id)
		}
		c.pendingMu.Unlock()

		c.setState(Closed)
	})
	return c.closeErr
}

// readLoop decodes one LDAPMessage at a time and routes it either to
// the ID-0 unsolicited handler or to the pending waiter for its
// message ID; late/unknown IDs are logged and dropped.
func (c *Conn) readLoop() {
	defer close(c.readerDone)

	for {
		p, err := ber.ReadPacket(c.conn)
		if err != nil {
			if c.State() == Closing {
				// Close shut the transport: waiters fail as closed, not as I/O errors.
				c.failAllAndClose(&ConnectionClosedError{})
			} else {
				c.failAllAndClose(&ConnectionError{Op: "read", Err: err})
			}
			return
		}

		env, err := message.DecodeEnvelope(p)
		if err != nil {
			c.failAllAndClose(&ConnectionError{Op: "decode", Err: err})
			return
		}

		if env.MessageID == 0 {
			c.handleUnsolicited(env)
			continue
		}

		c.route(env)
	}
}

func (c *Conn) route(env message.Envelope) {
	tag := env.Op.OpTag()

	c.pendingMu.Lock()
	waiter, ok := c.pending[env.MessageID]
	if ok && isTerminalResponse(tag) {
		delete(c.pending, env.MessageID)
	}
	c.pendingMu.Unlock()

	if !ok {
		c.logger.Printf("dropping response for unknown/abandoned message ID %d", env.MessageID)
		return
	}

	waiter.deliverOp(env.Op, env.Controls, isTerminalResponse(tag))
}

func (c *Conn) handleUnsolicited(env message.Envelope) {
	ext, ok := env.Op.(*message.ExtendedResponse)
	if !ok {
		c.logger.Printf("unsolicited notification with unexpected op %T", env.Op)
		return
	}

	if c.unsolicited != nil {
		c.unsolicited(ext.Name, ext.Value, ext.HasValue)
	}

	if ext.HasName && ext.Name == disconnectNoticeOID {
		c.failAllAndClose(&ConnectionClosedError{})
	}
}

func (c *Conn) failAllAndClose(err error) {
	c.setState(Closing)

	c.pendingMu.Lock()
	for id, w := range c.pending {
		w.fail(err)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	c.setState(Closed)
}

// Bind performs a simple bind. Exactly one bind may be in flight on a
// connection; every other request is rejected locally while it is.
func (c *Conn) Bind(dn, password string, controls []message.Control) error {
	if err := c.requireState("bind", Open, Bound); err != nil {
		return err
	}

	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.bindInFlight.Store(true)
	defer c.bindInFlight.Store(false)

	waiter, err := c.send(&message.BindRequest{Version: 3, Name: dn, Simple: password}, controls, 1)
	if err != nil {
		return err
	}

	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return err
	}

	resp := op.(*message.BindResponse)
	if resp.Result.Code != message.Success {
		return resultError(resp.Result)
	}

	c.setState(Bound)
	return nil
}

// SASLBind drives the RFC 4513 bind/challenge loop against provider for
// mechanism mech, failing with SaslNegotiationFailedError on provider
// error and OperationFailedError on a non-success, non-saslBindInProgress
// server result.
func (c *Conn) SASLBind(mech string, provider sasl.Provider, controls []message.Control) error {
	if err := c.requireState("bind", Open, Bound); err != nil {
		return err
	}

	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.bindInFlight.Store(true)
	defer c.bindInFlight.Store(false)

	initial, err := provider.Start(mech, c.cfg.saslHost)
	if err != nil {
		return &SaslNegotiationFailedError{Err: err}
	}

	creds := message.SaslCredentials{Mechanism: mech, Credentials: initial, HasCredentials: initial != nil}
	for {
		waiter, err := c.send(&message.BindRequest{Version: 3, Name: "", Sasl: creds}, controls, 1)
		if err != nil {
			return err
		}

		op, _, err := c.awaitSingle(waiter, c.opDeadline())
		if err != nil {
			return err
		}

		resp := op.(*message.BindResponse)
		switch resp.Result.Code {
		case message.Success:
			if err := provider.Complete(); err != nil {
				return &SaslNegotiationFailedError{Err: err}
			}
			c.setState(Bound)
			return nil

		case message.SaslBindInProgress:
			response, err := provider.Step(resp.ServerSaslCreds)
			if err != nil {
				return &SaslNegotiationFailedError{Err: err}
			}
			creds = message.SaslCredentials{Mechanism: mech, Credentials: response, HasCredentials: response != nil}

		default:
			return resultError(resp.Result)
		}
	}
}

// Add creates a new entry.
func (c *Conn) Add(dn string, attrs []message.PartialAttribute, controls []message.Control) error {
	if err := c.requireState("add", Bound, Open); err != nil {
		return err
	}
	if err := c.requireNoBindInFlight("add"); err != nil {
		return err
	}
	waiter, err := c.send(&message.AddRequest{Entry: dn, Attributes: attrs}, controls, 1)
	if err != nil {
		return err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return err
	}
	return resultErrorOrNil(op.(*message.AddResponse).Result)
}

// Delete removes the leaf entry named by dn.
func (c *Conn) Delete(dn string, controls []message.Control) error {
	if err := c.requireState("delete", Bound, Open); err != nil {
		return err
	}
	if err := c.requireNoBindInFlight("delete"); err != nil {
		return err
	}
	waiter, err := c.send(&message.DelRequest{Entry: dn}, controls, 1)
	if err != nil {
		return err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return err
	}
	return resultErrorOrNil(op.(*message.DelResponse).Result)
}

// ModifyDN renames or moves an entry.
func (c *Conn) ModifyDN(dn, newRDN string, deleteOldRDN bool, newSuperior string, hasNewSuperior bool, controls []message.Control) error {
	if err := c.requireState("modDN", Bound, Open); err != nil {
		return err
	}
	if err := c.requireNoBindInFlight("modDN"); err != nil {
		return err
	}
	req := &message.ModDNRequest{
		Entry: dn, NewRDN: newRDN, DeleteOldRDN: deleteOldRDN,
		NewSuperior: newSuperior, HasNewSuperior: hasNewSuperior,
	}
	waiter, err := c.send(req, controls, 1)
	if err != nil {
		return err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return err
	}
	return resultErrorOrNil(op.(*message.ModDNResponse).Result)
}

// Compare evaluates an equality assertion against a stored attribute,
// reporting (true, nil) for compareTrue and (false, nil) for
// compareFalse; any other result surfaces as OperationFailedError.
func (c *Conn) Compare(dn, attr, value string, controls []message.Control) (bool, error) {
	if err := c.requireState("compare", Bound, Open); err != nil {
		return false, err
	}
	if err := c.requireNoBindInFlight("compare"); err != nil {
		return false, err
	}
	req := &message.CompareRequest{Entry: dn, Assertion: message.AttributeValueAssertion{Desc: attr, Value: value}}
	waiter, err := c.send(req, controls, 1)
	if err != nil {
		return false, err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return false, err
	}
	cmp := op.(*message.CompareResponse)
	switch cmp.Result.Code {
	case message.CompareTrue:
		return true, nil
	case message.CompareFalse:
		return false, nil
	default:
		return false, resultError(cmp.Result)
	}
}

// ModifyRaw sends changes as a single modifyRequest with no planning or
// deduplication (internal/modify's "raw path").
func (c *Conn) ModifyRaw(dn string, changes []message.Change, controls []message.Control) error {
	if err := c.requireState("modify", Bound, Open); err != nil {
		return err
	}
	if err := c.requireNoBindInFlight("modify"); err != nil {
		return err
	}
	waiter, err := c.send(&message.ModifyRequest{Object: dn, Changes: changes}, controls, 1)
	if err != nil {
		return err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return err
	}
	return resultErrorOrNil(op.(*message.ModifyResponse).Result)
}

// Search issues a searchRequest and returns a SearchCursor streaming
// its results; the cursor must be drained (or closed) by the caller.
func (c *Conn) Search(req *message.SearchRequest, controls []message.Control) (*SearchCursor, error) {
	if err := c.requireState("search", Bound, Open); err != nil {
		return nil, err
	}
	if err := c.requireNoBindInFlight("search"); err != nil {
		return nil, err
	}
	waiter, err := c.send(req, controls, c.cfg.searchHighWater)
	if err != nil {
		return nil, err
	}
	return &SearchCursor{conn: c, waiter: waiter, deadline: c.opDeadline()}, nil
}

// StartTLS issues the StartTLS extended operation and, on success, wraps
// the underlying transport in TLS. No other operation may be in flight.
func (c *Conn) StartTLS(serverName string) error {
	waiter, err := c.send(&message.ExtendedRequest{Name: startTLSExtendedOID}, nil, 1)
	if err != nil {
		return err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return err
	}
	resp := op.(*message.ExtendedResponse)
	if resp.Result.Code != message.Success {
		return resultError(resp.Result)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	upgraded, err := upgradeToTLS(c.conn, serverName)
	if err != nil {
		return err
	}
	c.conn = upgraded
	return nil
}

// Extended invokes a generic extended operation.
func (c *Conn) Extended(name string, value []byte, hasValue bool) (*message.ExtendedResponse, error) {
	if err := c.requireState("extended", Open, Bound); err != nil {
		return nil, err
	}
	if err := c.requireNoBindInFlight("extended"); err != nil {
		return nil, err
	}
	waiter, err := c.send(&message.ExtendedRequest{Name: name, Value: value, HasValue: hasValue}, nil, 1)
	if err != nil {
		return nil, err
	}
	op, _, err := c.awaitSingle(waiter, c.opDeadline())
	if err != nil {
		return nil, err
	}
	resp := op.(*message.ExtendedResponse)
	if resp.Result.Code != message.Success {
		return resp, resultError(resp.Result)
	}
	return resp, nil
}

func resultError(r message.Result) error {
	if r.Code == message.Referral {
		return &ReferralError{URLs: r.Referral}
	}
	return &OperationFailedError{ResultCode: r.Code, DiagnosticMessage: r.DiagnosticMessage, MatchedDN: r.MatchedDN}
}

func resultErrorOrNil(r message.Result) error {
	if r.Code == message.Success {
		return nil
	}
	return resultError(r)
}

// SearchFilter parses s under mode and wraps it for use as a
// message.SearchRequest.Filter, surfacing a FilterSyntaxError-flavoured
// wrap before any I/O is attempted.
func SearchFilter(s string, mode filter.Mode) (message.Filter, error) {
	f, err := filter.Parse(s, mode)
	if err != nil {
		return nil, fmt.Errorf("ldapcore: invalid filter: %w", err)
	}
	return f, nil
}
