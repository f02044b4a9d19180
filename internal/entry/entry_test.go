package entry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRenderDNRoundTrip(t *testing.T) {
	s := "uid=alice,ou=people,dc=example,dc=org"
	dn, err := ParseDN(s)
	require.NoError(t, err)
	require.Equal(t, s, dn.String())

	reparsed, err := ParseDN(dn.String())
	require.NoError(t, err)
	require.True(t, dn.Equal(reparsed))
}

func TestParseDNEscapedComma(t *testing.T) {
	dn, err := ParseDN(`cn=Smith\, John,dc=example,dc=org`)
	require.NoError(t, err)
	leaf, ok := dn.Leaf()
	require.True(t, ok)
	require.Equal(t, "Smith, John", leaf.AVAs()[0].Value)
}

func TestParseDNMultiValuedRDN(t *testing.T) {
	dn, err := ParseDN("cn=a+uid=b,dc=example,dc=org")
	require.NoError(t, err)
	leaf, ok := dn.Leaf()
	require.True(t, ok)
	require.Len(t, leaf.AVAs(), 2)
}

func TestDNChildAndParent(t *testing.T) {
	base, err := ParseDN("dc=example,dc=org")
	require.NoError(t, err)
	child := base.Child(NewRDN(WithAVA("ou", "people")))
	require.Equal(t, "ou=people,dc=example,dc=org", child.String())

	parent, ok := child.Parent()
	require.True(t, ok)
	require.True(t, parent.Equal(base))
}

func TestRootDSE(t *testing.T) {
	dn, err := ParseDN("")
	require.NoError(t, err)
	require.True(t, dn.IsRootDSE())
	require.Equal(t, "", dn.String())
}

func TestIsAncestorOf(t *testing.T) {
	base, _ := ParseDN("dc=example,dc=org")
	child, _ := ParseDN("uid=alice,ou=people,dc=example,dc=org")
	require.True(t, base.IsAncestorOf(child))
	require.False(t, child.IsAncestorOf(base))
}

func TestEscapeUnescapeAttributeValue(t *testing.T) {
	raw := "a,b+c\"d\\e<f>g;h=i"
	esc := EscapeAttributeValue(raw)
	back, err := UnescapeAttributeValue(esc)
	require.NoError(t, err)
	require.Equal(t, raw, back)
}

func TestAttributeMapAddDedup(t *testing.T) {
	m := NewAttributeMap(nil)
	m.Replace("description", []string{"a"})

	added, err := m.Add("description", "a", "b")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, added)

	got, ok := m.Get("description")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestAttributeMapDeleteNoopOnAbsent(t *testing.T) {
	m := NewAttributeMap(nil)
	m.Replace("description", []string{"a"})

	removed, err := m.Delete("description", "nonexistent")
	require.NoError(t, err)
	require.Empty(t, removed)

	got, _ := m.Get("description")
	require.Equal(t, []string{"a"}, got)
}

func TestAttributeMapCaseInsensitiveKeys(t *testing.T) {
	m := NewAttributeMap(nil)
	m.Replace("Description", []string{"a"})
	got, ok := m.Get("DESCRIPTION")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, got)
	require.Equal(t, []string{"Description"}, m.Names())
}

func TestAttributeMapSchemaAwareEquality(t *testing.T) {
	eq := func(attr, a, b string) (bool, error) {
		return a == b || (a == "Foo" && b == "foo"), nil
	}
	m := NewAttributeMap(eq)
	m.Replace("cn", []string{"Foo"})
	added, err := m.Add("cn", "foo")
	require.NoError(t, err)
	require.Empty(t, added)
}
