package ldapcore

import (
	"net"
	"testing"

	"github.com/georgib0y/ldapcore/internal/entry"
	"github.com/georgib0y/ldapcore/internal/message"
	"github.com/georgib0y/ldapcore/internal/modify"
	"github.com/stretchr/testify/require"
)

func newBoundDirectory(t *testing.T) (*Directory, net.Conn) {
	t.Helper()
	c, server := pipePair(t)
	bindAndSucceed(t, c, server)

	dn, err := entry.ParseDN("ou=people,dc=example,dc=org")
	require.NoError(t, err)
	return NewDirectory(c, dn), server
}

func TestDirectoryFindUsesOneLevelScopeWhenConfigured(t *testing.T) {
	c, server := pipePair(t)
	bindAndSucceed(t, c, server)

	dn, err := entry.ParseDN("ou=people,dc=example,dc=org")
	require.NoError(t, err)
	d := NewDirectory(c, dn, WithRelativeScope(message.ScopeSingleLevel))

	rdn := entry.NewRDN(entry.WithAVA("uid", "alice"))

	found := make(chan *Directory, 1)
	errs := make(chan error, 1)
	go func() {
		child, err := d.Find(rdn)
		found <- child
		errs <- err
	}()

	req := readServerEnvelope(t, server)
	sr, ok := req.Op.(*message.SearchRequest)
	require.True(t, ok)
	require.Equal(t, message.ScopeSingleLevel, sr.Scope)
	require.Equal(t, "ou=people,dc=example,dc=org", sr.BaseObject)

	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultEntry{
		ObjectName: "uid=alice,ou=people,dc=example,dc=org",
		Attributes: []message.PartialAttribute{{Type: "uid", Values: []string{"alice"}}},
	})
	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultDone{Result: message.Result{Code: message.Success}})

	child := <-found
	require.NoError(t, <-errs)
	require.Equal(t, "uid=alice,ou=people,dc=example,dc=org", child.DN().String())
}

func TestDirectoryFindReturnsNotFoundOnEmptyResult(t *testing.T) {
	c, server := pipePair(t)
	bindAndSucceed(t, c, server)

	dn, err := entry.ParseDN("ou=people,dc=example,dc=org")
	require.NoError(t, err)
	d := NewDirectory(c, dn)

	rdn := entry.NewRDN(entry.WithAVA("uid", "ghost"))

	errs := make(chan error, 1)
	go func() {
		_, err := d.Find(rdn)
		errs <- err
	}()

	req := readServerEnvelope(t, server)
	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultDone{Result: message.Result{Code: message.Success}})

	err = <-errs
	require.IsType(t, &NotFoundError{}, err)
}

func TestDirectoryGetChildSearchesBaseScope(t *testing.T) {
	d, server := newBoundDirectory(t)

	rdn := entry.NewRDN(entry.WithAVA("uid", "bob"))

	errs := make(chan error, 1)
	found := make(chan *Directory, 1)
	go func() {
		child, err := d.GetChild(rdn)
		found <- child
		errs <- err
	}()

	req := readServerEnvelope(t, server)
	sr, ok := req.Op.(*message.SearchRequest)
	require.True(t, ok)
	require.Equal(t, message.ScopeBaseObject, sr.Scope)
	require.Equal(t, "uid=bob,ou=people,dc=example,dc=org", sr.BaseObject)

	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultEntry{
		ObjectName: "uid=bob,ou=people,dc=example,dc=org",
	})
	writeServerEnvelope(t, server, req.MessageID, &message.SearchResultDone{Result: message.Result{Code: message.Success}})

	require.NoError(t, <-errs)
	require.NotNil(t, <-found)
}

func TestDirectoryModifySendsPlannedChangesAndUpdatesLocalCache(t *testing.T) {
	d, server := newBoundDirectory(t)
	d.attrs.Replace("description", []string{"a"})

	errs := make(chan error, 1)
	go func() {
		errs <- d.Modify(AddAttrs(map[string][]string{"description": {"a", "b"}}), false)
	}()

	req := readServerEnvelope(t, server)
	mr, ok := req.Op.(*message.ModifyRequest)
	require.True(t, ok)
	require.Len(t, mr.Changes, 1)
	require.Equal(t, message.ModAdd, mr.Changes[0].Operation)
	require.Equal(t, []string{"b"}, mr.Changes[0].Modification.Values)

	writeServerEnvelope(t, server, req.MessageID, &message.ModifyResponse{Result: message.Result{Code: message.Success}})

	require.NoError(t, <-errs)
	vals, ok := d.attrs.Get("description")
	require.True(t, ok)
	require.ElementsMatch(t, []string{"a", "b"}, vals)
}

func TestDirectoryModifyNoOpSkipsWire(t *testing.T) {
	d, _ := newBoundDirectory(t)
	d.attrs.Replace("description", []string{"a"})

	err := d.Modify(AddAttrs(map[string][]string{"description": {"a"}}), false)
	require.NoError(t, err)
}

func TestDirectoryModifyStrictSendsRawDeleteAllWithNoPrefetch(t *testing.T) {
	d, server := newBoundDirectory(t)

	errs := make(chan error, 1)
	go func() {
		reqs := []modify.Request{{Attr: "description", Op: modify.OpDelete, Values: modify.DeleteAll()}}
		errs <- d.Modify(reqs, true)
	}()

	req := readServerEnvelope(t, server)
	mr, ok := req.Op.(*message.ModifyRequest)
	require.True(t, ok)
	require.Len(t, mr.Changes, 1)
	require.Equal(t, message.ModDelete, mr.Changes[0].Operation)
	require.Nil(t, mr.Changes[0].Modification.Values)

	writeServerEnvelope(t, server, req.MessageID, &message.ModifyResponse{Result: message.Result{Code: message.Success}})
	require.NoError(t, <-errs)
}
