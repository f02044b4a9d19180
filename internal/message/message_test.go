package message

import (
	"testing"

	"github.com/georgib0y/ldapcore/internal/ber"
	"github.com/stretchr/testify/require"
)

type literalFilter struct{ p *ber.Packet }

func (f literalFilter) EncodeFilter() *ber.Packet { return f.p }

func presenceFilter(attr string) Filter {
	return literalFilter{ber.NewString(ber.ContextSpecific(7, false), attr, "present")}
}

func roundTrip(t *testing.T, env Envelope) Envelope {
	t.Helper()
	encoded := ber.Encode(env.Encode())
	decoded, rest, err := ber.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, rest)

	got, err := DecodeEnvelope(decoded)
	require.NoError(t, err)
	return got
}

func TestBindRequestRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 1,
		Op: &BindRequest{
			Version: 3,
			Name:    "cn=admin,dc=example,dc=org",
			Simple:  "secret",
		},
	}

	got := roundTrip(t, env)
	br, ok := got.Op.(*BindRequest)
	require.True(t, ok)
	require.Equal(t, int64(3), br.Version)
	require.Equal(t, "cn=admin,dc=example,dc=org", br.Name)
	require.Equal(t, "secret", br.Simple)
}

func TestSearchRequestRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 2,
		Op: &SearchRequest{
			BaseObject:   "dc=example,dc=org",
			Scope:        ScopeWholeSubtree,
			DerefAliases: NeverDerefAliases,
			SizeLimit:    0,
			TimeLimit:    0,
			TypesOnly:    false,
			Filter:       presenceFilter("objectClass"),
			Attributes:   []string{"uid", "cn"},
		},
	}

	got := roundTrip(t, env)
	sr, ok := got.Op.(*SearchRequest)
	require.True(t, ok)
	require.Equal(t, "dc=example,dc=org", sr.BaseObject)
	require.Equal(t, ScopeWholeSubtree, sr.Scope)
	require.Equal(t, []string{"uid", "cn"}, sr.Attributes)
}

func TestSearchResultEntryRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 2,
		Op: &SearchResultEntry{
			ObjectName: "uid=alice,dc=example,dc=org",
			Attributes: []PartialAttribute{
				{Type: "uid", Values: []string{"alice"}},
			},
		},
	}

	got := roundTrip(t, env)
	e, ok := got.Op.(*SearchResultEntry)
	require.True(t, ok)
	require.Equal(t, "uid=alice,dc=example,dc=org", e.ObjectName)
	require.Equal(t, "uid", e.Attributes[0].Type)
	require.Equal(t, []string{"alice"}, e.Attributes[0].Values)
}

func TestModifyRequestRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 3,
		Op: &ModifyRequest{
			Object: "cn=foo,dc=example,dc=org",
			Changes: []Change{
				{Operation: ModAdd, Modification: PartialAttribute{Type: "description", Values: []string{"b"}}},
			},
		},
	}

	got := roundTrip(t, env)
	m, ok := got.Op.(*ModifyRequest)
	require.True(t, ok)
	require.Len(t, m.Changes, 1)
	require.Equal(t, ModAdd, m.Changes[0].Operation)
	require.Equal(t, "description", m.Changes[0].Modification.Type)
}

func TestDelRequestRoundTrip(t *testing.T) {
	env := Envelope{MessageID: 4, Op: &DelRequest{Entry: "cn=foo,dc=example,dc=org"}}
	got := roundTrip(t, env)
	d, ok := got.Op.(*DelRequest)
	require.True(t, ok)
	require.Equal(t, "cn=foo,dc=example,dc=org", d.Entry)
}

func TestAbandonRequestRoundTrip(t *testing.T) {
	env := Envelope{MessageID: 5, Op: &AbandonRequest{MessageID: 2}}
	got := roundTrip(t, env)
	a, ok := got.Op.(*AbandonRequest)
	require.True(t, ok)
	require.Equal(t, int64(2), a.MessageID)
}

func TestBindResponseWithReferralRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 1,
		Op: &BindResponse{
			Result: Result{
				Code:              Referral,
				DiagnosticMessage: "try elsewhere",
				Referral:          []string{"ldap://other.example.org/"},
			},
		},
	}

	got := roundTrip(t, env)
	br, ok := got.Op.(*BindResponse)
	require.True(t, ok)
	require.Equal(t, Referral, br.Code)
	require.Equal(t, []string{"ldap://other.example.org/"}, br.Referral)
}

func TestUnknownResultCodeRoundTripsVerbatim(t *testing.T) {
	env := Envelope{MessageID: 1, Op: &AddResponse{Result: Result{Code: ResultCode(9999)}}}
	got := roundTrip(t, env)
	a, ok := got.Op.(*AddResponse)
	require.True(t, ok)
	require.Equal(t, ResultCode(9999), a.Code)
}

func TestExtendedRequestRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 7,
		Op: &ExtendedRequest{
			Name:     "1.3.6.1.4.1.1466.20037",
			Value:    []byte("tls"),
			HasValue: true,
		},
	}
	got := roundTrip(t, env)
	e, ok := got.Op.(*ExtendedRequest)
	require.True(t, ok)
	require.Equal(t, "1.3.6.1.4.1.1466.20037", e.Name)
	require.Equal(t, []byte("tls"), e.Value)
}

func TestEnvelopeWithControlsRoundTrip(t *testing.T) {
	env := Envelope{
		MessageID: 8,
		Op:        &UnbindRequest{},
		Controls: []Control{
			{OID: "1.2.840.113556.1.4.319", Criticality: true, Value: []byte("page"), HasValue: true},
		},
	}
	got := roundTrip(t, env)
	require.Len(t, got.Controls, 1)
	require.Equal(t, "1.2.840.113556.1.4.319", got.Controls[0].OID)
	require.True(t, got.Controls[0].Criticality)
	require.Equal(t, []byte("page"), got.Controls[0].Value)
}
