package modify

import (
	"fmt"
	"testing"

	"github.com/georgib0y/ldapcore/internal/message"
	"github.com/stretchr/testify/require"
)

func TestPlanAddDedupWithPrefetch(t *testing.T) {
	var searched []string
	prefetch := func(attrs []string) (map[string][]string, error) {
		searched = attrs
		return map[string][]string{"description": {"a"}}, nil
	}

	reqs := []Request{{Attr: "description", Op: OpAdd, Values: Values("a", "b")}}
	changes, err := Plan(reqs, false, nil, prefetch, nil, EmptyListForward, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"description"}, searched)
	require.Len(t, changes, 1)
	require.Equal(t, message.ModAdd, changes[0].Operation)
	require.Equal(t, []string{"b"}, changes[0].Modification.Values)
}

func TestPlanAddAllDuplicatesSkipsEntirely(t *testing.T) {
	known := stubState{"description": {"a", "b"}}
	reqs := []Request{{Attr: "description", Op: OpAdd, Values: Values("a", "b")}}
	changes, err := Plan(reqs, false, known, nil, nil, EmptyListForward, nil)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestPlanDeleteDropsNonPresentValues(t *testing.T) {
	known := stubState{"description": {"a"}}
	reqs := []Request{{Attr: "description", Op: OpDelete, Values: Values("a", "nonexistent")}}
	changes, err := Plan(reqs, false, known, nil, nil, EmptyListForward, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, []string{"a"}, changes[0].Modification.Values)
}

func TestPlanDeleteAllPassesThrough(t *testing.T) {
	reqs := []Request{{Attr: "description", Op: OpDelete, Values: DeleteAll()}}
	changes, err := Plan(reqs, false, nil, nil, nil, EmptyListForward, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Nil(t, changes[0].Modification.Values)
}

func TestPlanReplacePassesThroughVerbatim(t *testing.T) {
	reqs := []Request{{Attr: "description", Op: OpReplace, Values: Values("x")}}
	changes, err := Plan(reqs, false, nil, nil, nil, EmptyListForward, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, message.ModReplace, changes[0].Operation)
}

func TestPlanStrictSkipsDedup(t *testing.T) {
	known := stubState{"description": {"a"}}
	reqs := []Request{{Attr: "description", Op: OpAdd, Values: Values("a")}}
	changes, err := Plan(reqs, true, known, nil, nil, EmptyListForward, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, []string{"a"}, changes[0].Modification.Values)
}

func TestPlanRejectsDeleteAllOnAdd(t *testing.T) {
	reqs := []Request{{Attr: "description", Op: OpAdd, Values: DeleteAll()}}
	_, err := Plan(reqs, false, nil, nil, nil, EmptyListForward, nil)
	require.Error(t, err)
}

func TestPlanEmptyReplaceIgnored(t *testing.T) {
	reqs := []Request{{Attr: "description", Op: OpReplace, Values: Values()}}
	changes, err := Plan(reqs, false, nil, nil, nil, EmptyListIgnore, nil)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestPlanEmptyReplaceWarns(t *testing.T) {
	var warned string
	warnf := func(format string, args ...any) { warned = fmt.Sprintf(format, args...) }

	reqs := []Request{{Attr: "description", Op: OpReplace, Values: Values()}}
	changes, err := Plan(reqs, false, nil, nil, nil, EmptyListWarn, warnf)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, message.ModReplace, changes[0].Operation)
	require.NotEmpty(t, warned)
}

func TestPlanEmptyReplaceErrors(t *testing.T) {
	reqs := []Request{{Attr: "description", Op: OpReplace, Values: Values()}}
	_, err := Plan(reqs, false, nil, nil, nil, EmptyListError, nil)
	require.Error(t, err)
	require.IsType(t, &EmptyListRejectedError{}, err)
}

func TestPlanEmptyReplaceForwarded(t *testing.T) {
	reqs := []Request{{Attr: "description", Op: OpReplace, Values: Values()}}
	changes, err := Plan(reqs, false, nil, nil, nil, EmptyListForward, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Empty(t, changes[0].Modification.Values)
}

func TestAddModlist(t *testing.T) {
	c := AddModlist("description", "a", "b")
	require.Equal(t, message.ModAdd, c.Operation)
	require.Equal(t, "description", c.Modification.Type)
	require.Equal(t, []string{"a", "b"}, c.Modification.Values)
}

type stubState map[string][]string

func (s stubState) Get(name string) ([]string, bool) {
	v, ok := s[name]
	return v, ok
}
