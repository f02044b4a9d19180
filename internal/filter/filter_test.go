package filter

import (
	"testing"

	"github.com/georgib0y/ldapcore/internal/ber"
	"github.com/stretchr/testify/require"
)

func wireRoundTrip(t *testing.T, f Filter) Filter {
	t.Helper()
	encoded := ber.Encode(f.EncodeFilter())
	decoded, rest, err := ber.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, rest)

	got, err := DecodeFilter(decoded)
	require.NoError(t, err)
	return got
}

func TestEqualityWireRoundTrip(t *testing.T) {
	got := wireRoundTrip(t, Equality{Attr: "cn", Value: "alice"})
	require.Equal(t, Equality{Attr: "cn", Value: "alice"}, got)
}

func TestPresentWireRoundTrip(t *testing.T) {
	got := wireRoundTrip(t, Present{Attr: "objectClass"})
	require.Equal(t, Present{Attr: "objectClass"}, got)
}

func TestSubstringWireRoundTrip(t *testing.T) {
	f := Substring{Attr: "cn", Initial: "al", HasInitial: true, Any: []string{"c"}, Final: "e", HasFinal: true}
	got := wireRoundTrip(t, f)
	require.Equal(t, f, got)
}

func TestAndOrNotWireRoundTrip(t *testing.T) {
	f := And{
		Equality{Attr: "objectClass", Value: "person"},
		Not{Filter: Present{Attr: "uid"}},
	}
	got := wireRoundTrip(t, f)
	and, ok := got.(And)
	require.True(t, ok)
	require.Len(t, and, 2)
	require.Equal(t, Equality{Attr: "objectClass", Value: "person"}, and[0])
	not, ok := and[1].(Not)
	require.True(t, ok)
	require.Equal(t, Present{Attr: "uid"}, not.Filter)
}

func TestExtensibleWireRoundTrip(t *testing.T) {
	f := Extensible{Type: "cn", HasType: true, Rule: "caseIgnoreMatch", HasRule: true, Value: "alice", DNAttributes: true}
	got := wireRoundTrip(t, f)
	require.Equal(t, f, got)
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	raw := "a*b(c)d\\e"
	escaped := EscapeAssertionValue(raw)
	require.Equal(t, `a\2ab\28c\29d\5ce`, escaped)

	back, err := UnescapeAssertionValue(escaped)
	require.NoError(t, err)
	require.Equal(t, raw, back)
}

func TestParseStandardEquality(t *testing.T) {
	f, err := ParseStandard("(cn=alice)")
	require.NoError(t, err)
	require.Equal(t, Equality{Attr: "cn", Value: "alice"}, f)
}

func TestParseStandardAndNot(t *testing.T) {
	f, err := ParseStandard("(&(objectClass=person)(!(uid=admin)))")
	require.NoError(t, err)
	require.Equal(t, "(&(objectClass=person)(!(uid=admin)))", RenderCanonical(f))
}

func TestParseStandardPresentAndSubstring(t *testing.T) {
	f, err := ParseStandard("(cn=al*ice)")
	require.NoError(t, err)
	require.Equal(t, Substring{Attr: "cn", Initial: "al", HasInitial: true, Final: "ice", HasFinal: true}, f)

	f, err = ParseStandard("(mail=*)")
	require.NoError(t, err)
	require.Equal(t, Present{Attr: "mail"}, f)
}

func TestParseStandardExtensible(t *testing.T) {
	f, err := ParseStandard("(cn:caseIgnoreMatch:=alice)")
	require.NoError(t, err)
	require.Equal(t, Extensible{Type: "cn", HasType: true, Rule: "caseIgnoreMatch", HasRule: true, Value: "alice"}, f)

	f, err = ParseStandard("(:dn:caseIgnoreMatch:=alice)")
	require.NoError(t, err)
	require.Equal(t, Extensible{Rule: "caseIgnoreMatch", HasRule: true, Value: "alice", DNAttributes: true}, f)
}

func TestFilterRoundTripScenario(t *testing.T) {
	// Scenario: unified-mode parse of a simple-syntax filter renders to
	// the canonical standard form and re-parses to the same AST.
	f, err := Parse("(gidNumber<=1000) AND NOT (memberUid=*)", ModeUnified)
	require.NoError(t, err)

	canonical := RenderCanonical(f)
	require.Equal(t, "(&(gidNumber<=1000)(!(memberUid=*)))", canonical)

	reparsed, err := ParseStandard(canonical)
	require.NoError(t, err)
	require.Equal(t, f, reparsed)
}

func TestParseSimpleGrouping(t *testing.T) {
	f, err := ParseSimple("((cn=a) OR (cn=b)) AND (sn=c)")
	require.NoError(t, err)
	require.Equal(t, "(&(|(cn=a)(cn=b))(sn=c))", RenderCanonical(f))
}

func TestParseUnifiedMixesBothSyntaxes(t *testing.T) {
	f, err := Parse("(&(objectClass=person)(cn=a)) AND (sn=b)", ModeUnified)
	require.NoError(t, err)
	require.Equal(t, "(&(&(objectClass=person)(cn=a))(sn=b))", RenderCanonical(f))
}

func TestParseStandardRejectsTrailingInput(t *testing.T) {
	_, err := ParseStandard("(cn=a)(sn=b)")
	require.Error(t, err)
}

func TestParseItemInvalidEscape(t *testing.T) {
	_, err := ParseStandard(`(cn=a\2)`)
	require.Error(t, err)
}
