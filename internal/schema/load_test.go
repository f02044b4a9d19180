package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefinitionsRegistersAttributesAndClasses(t *testing.T) {
	file := `
attributetype ( 1.2.3.4 NAME 'widget'
  EQUALITY caseIgnoreMatch
  SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )

objectclass ( 1.2.3.5 NAME 'gadget' SUP top STRUCTURAL MUST ( widget ) )
`
	r := NewRegistry()
	require.NoError(t, r.LoadDefinitions(strings.NewReader(file)))

	at, ok := r.AttributeByName("widget")
	require.True(t, ok)
	require.Equal(t, OID("1.2.3.4"), at.OID)

	oc, ok := r.ObjectClassByName("gadget")
	require.True(t, ok)
	require.Equal(t, []string{"widget"}, oc.Must)
}

func TestLoadDefinitionsCollectsErrorsAndKeepsGoing(t *testing.T) {
	file := `
attributetype ( 1.2.3.4 NAME 'widget' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )
attributetype ( 1.2.3.4 NAME 'widget' SYNTAX 1.3.6.1.4.1.1466.115.121.1.26 )
objectclass ( 1.2.3.5 NAME 'gadget' SUP top STRUCTURAL MUST ( widget ) )
`
	r := NewRegistry()
	err := r.LoadDefinitions(strings.NewReader(file))
	require.Error(t, err)

	_, ok := r.ObjectClassByName("gadget")
	require.True(t, ok)
}

func TestLoadDefinitionsIgnoresUnrelatedLines(t *testing.T) {
	file := "# a comment\nobjectIdentifier x 1.2.3\nobjectclass ( 1.2.3.5 NAME 'gadget' SUP top STRUCTURAL )\n"
	r := NewRegistry()
	require.NoError(t, r.LoadDefinitions(strings.NewReader(file)))

	_, ok := r.ObjectClassByName("gadget")
	require.True(t, ok)
}
