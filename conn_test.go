package ldapcore

import (
	"net"
	"testing"
	"time"

	"github.com/georgib0y/ldapcore/internal/ber"
	"github.com/georgib0y/ldapcore/internal/message"
	"github.com/stretchr/testify/require"
)

// pipePair returns a Conn wrapping one end of an in-memory pipe and the
// raw net.Conn for the other end, so tests can script server-side
// responses directly with internal/message/internal/ber.
func pipePair(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	c, err := NewConn(client)
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	return c, server
}

func readServerEnvelope(t *testing.T, server net.Conn) message.Envelope {
	t.Helper()
	p, err := ber.ReadPacket(server)
	require.NoError(t, err)
	env, err := message.DecodeEnvelope(p)
	require.NoError(t, err)
	return env
}

func writeServerEnvelope(t *testing.T, server net.Conn, id int64, op message.ProtocolOp) {
	t.Helper()
	env := message.Envelope{MessageID: id, Op: op}
	_, err := server.Write(ber.Encode(env.Encode()))
	require.NoError(t, err)
}

func TestBindSuccessTransitionsToBound(t *testing.T) {
	c, server := pipePair(t)

	done := make(chan error, 1)
	go func() { done <- c.Bind("cn=admin,dc=example,dc=org", "secret", nil) }()

	req := readServerEnvelope(t, server)
	br, ok := req.Op.(*message.BindRequest)
	require.True(t, ok)
	require.Equal(t, "secret", br.Simple)

	writeServerEnvelope(t, server, req.MessageID, &message.BindResponse{Result: message.Result{Code: message.Success}})

	require.NoError(t, <-done)
	require.Equal(t, Bound, c.State())
}

func TestBindInvalidCredentialsSurfacesOperationFailed(t *testing.T) {
	c, server := pipePair(t)

	done := make(chan error, 1)
	go func() { done <- c.Bind("cn=admin,dc=example,dc=org", "wrong", nil) }()

	req := readServerEnvelope(t, server)
	writeServerEnvelope(t, server, req.MessageID, &message.BindResponse{
		Result: message.Result{Code: message.InvalidCredentials, DiagnosticMessage: "bad password"},
	})

	err := <-done
	require.Error(t, err)
	opErr, ok := err.(*OperationFailedError)
	require.True(t, ok)
	require.Equal(t, message.InvalidCredentials, opErr.ResultCode)
	require.Equal(t, Open, c.State())
}

func TestSearchStreamsEntriesThenCompletes(t *testing.T) {
	c, server := pipePair(t)
	bindAndSucceed(t, c, server)

	results := make(chan *SearchCursor, 1)
	go func() {
		f, err := SearchFilter("(objectClass=*)", 0)
		require.NoError(t, err)
		cur, err := c.Search(&message.SearchRequest{BaseObject: "dc=example,dc=org", Filter: f}, nil)
		require.NoError(t, err)
		results <- cur
	}()

	req := readServerEnvelope(t, server)
	_, ok := req.Op.(*message.SearchRequest)
	require.True(t, ok)

	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultEntry{
		ObjectName: "uid=alice,dc=example,dc=org",
		Attributes: []message.PartialAttribute{{Type: "uid", Values: []string{"alice"}}},
	})
	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultDone{Result: message.Result{Code: message.Success}})

	cur := <-results
	entries, err := cur.Collect()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "uid=alice,dc=example,dc=org", entries[0].ObjectName)
}

func TestAbandonFailsWaiterAndDiscardsLateResponse(t *testing.T) {
	c, server := pipePair(t)
	bindAndSucceed(t, c, server)

	done := make(chan error, 1)
	go func() {
		_, err := c.Compare("cn=foo,dc=example,dc=org", "cn", "foo", nil)
		done <- err
	}()

	req := readServerEnvelope(t, server)
	// net.Pipe is unbuffered: Abandon's write of the abandonRequest only
	// completes once the scripted server reads it.
	abandonErr := make(chan error, 1)
	go func() { abandonErr <- c.Abandon(req.MessageID) }()
	abandon := readServerEnvelope(t, server)
	require.Equal(t, message.TagAbandonRequest, abandon.Op.OpTag())
	require.NoError(t, <-abandonErr)
	require.IsType(t, &AbandonedError{}, <-done)

	// a late response for the abandoned ID must not panic or deadlock.
	writeServerEnvelope(t, server, req.MessageID, &message.CompareResponse{Result: message.Result{Code: message.CompareTrue}})
	time.Sleep(10 * time.Millisecond)
}

func TestOperationTimeoutAbandonsAndFails(t *testing.T) {
	client, server := net.Pipe()
	c, err := NewConn(client, WithOperationTimeout(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	bindAndSucceed(t, c, server)

	done := make(chan error, 1)
	go func() {
		_, err := c.Compare("cn=foo,dc=example,dc=org", "cn", "foo", nil)
		done <- err
	}()

	// the connection must still have sent an abandonRequest for it.
	req := readServerEnvelope(t, server)
	require.Equal(t, message.TagCompareRequest, req.Op.OpTag())
	abandon := readServerEnvelope(t, server)
	require.Equal(t, message.TagAbandonRequest, abandon.Op.OpTag())

	require.IsType(t, &TimeoutError{}, <-done)
}

func bindAndSucceed(t *testing.T, c *Conn, server net.Conn) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Bind("cn=admin,dc=example,dc=org", "secret", nil) }()
	req := readServerEnvelope(t, server)
	writeServerEnvelope(t, server, req.MessageID, &message.BindResponse{Result: message.Result{Code: message.Success}})
	require.NoError(t, <-done)
}
