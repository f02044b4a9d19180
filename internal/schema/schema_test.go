package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAttributeType(t *testing.T) {
	at, err := ParseAttributeType(`( 2.5.4.3 NAME ( 'cn' 'commonName' ) EQUALITY caseIgnoreMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15{64} SINGLE-VALUE )`)
	require.NoError(t, err)
	require.Equal(t, OID("2.5.4.3"), at.OID)
	require.Equal(t, []string{"cn", "commonName"}, at.Names)
	require.Equal(t, "caseIgnoreMatch", at.Equality)
	require.Equal(t, OID("1.3.6.1.4.1.1466.115.121.1.15"), at.Syntax)
	require.True(t, at.SingleValued)
}

func TestParseObjectClass(t *testing.T) {
	oc, err := ParseObjectClass(`( 2.5.6.6 NAME 'person' SUP top STRUCTURAL MUST ( sn $ cn ) MAY ( description ) )`)
	require.NoError(t, err)
	require.Equal(t, OID("2.5.6.6"), oc.OID)
	require.Equal(t, KindStructural, oc.Kind)
	require.Equal(t, []string{"sn", "cn"}, oc.Must)
	require.Equal(t, []string{"description"}, oc.May)
}

func TestRegistryIdempotentRegistration(t *testing.T) {
	r := NewRegistry()
	def := `( 1.2.3.4 NAME 'widget' EQUALITY caseIgnoreMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )`
	at, err := ParseAttributeType(def)
	require.NoError(t, err)

	require.NoError(t, r.RegisterAttributeType(at))
	require.NoError(t, r.RegisterAttributeType(at)) // identical re-registration is a no-op

	got, ok := r.AttributeByName("widget")
	require.True(t, ok)
	require.Equal(t, OID("1.2.3.4"), got.OID)
}

func TestRegistryConflictingRegistration(t *testing.T) {
	r := NewRegistry()
	at1, _ := ParseAttributeType(`( 1.2.3.4 NAME 'widget' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )`)
	at2, _ := ParseAttributeType(`( 1.2.3.4 NAME 'widget' SYNTAX 1.3.6.1.4.1.1466.115.121.1.26 )`)

	require.NoError(t, r.RegisterAttributeType(at1))
	err := r.RegisterAttributeType(at2)
	require.Error(t, err)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestBuiltinsResolveByNameOrOID(t *testing.T) {
	r := NewRegistry()
	byName, ok := r.AttributeByName("cn")
	require.True(t, ok)
	byOID, ok := r.AttributeByName(string(byName.OID))
	require.True(t, ok)
	require.Equal(t, byName.OID, byOID.OID)
}

func TestEqualityMatchCaseIgnore(t *testing.T) {
	r := NewRegistry()
	eq, err := r.Equal("cn", "Alice Smith", "alice  smith")
	require.NoError(t, err)
	require.True(t, eq)

	eq, err = r.Equal("cn", "Alice", "Bob")
	require.NoError(t, err)
	require.False(t, eq)
}

func TestEqualityFallsBackToOctetEquality(t *testing.T) {
	r := NewRegistry()
	eq, err := r.Equal("xUnknownAttr", "Foo", "foo")
	require.NoError(t, err)
	require.False(t, eq) // octet equality, so case matters
}

func TestPrepareInsignificantSpaces(t *testing.T) {
	mr, ok := NewRegistry().MatchingRuleByName("caseIgnoreMatch")
	require.True(t, ok)
	got, err := Prepare(mr, "  Alice   Smith  ")
	require.NoError(t, err)
	require.Equal(t, "alice smith", got)
}
