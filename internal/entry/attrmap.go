package entry

import "strings"

// EqualityFunc compares two values of one attribute under its matching
// rule; AttributeMap falls back to octet equality when none is bound,
// mirroring internal/schema's own unknown-attribute fallback.
type EqualityFunc func(attr, a, b string) (bool, error)

func octetEqualityFunc(_, a, b string) (bool, error) { return a == b, nil }

// AttributeMap is a case-insensitive, insertion-order-preserving map
// from attribute description to its ordered value sequence (spec.md
// C5). Value sequences behave as sets under the bound equality rule:
// adding an equal value is a no-op, deleting a non-present value is a
// no-op.
type AttributeMap struct {
	order []string // canonical (first-seen) spelling, in insertion order
	index map[string]int
	rows  [][]string
	eq    EqualityFunc
}

// NewAttributeMap builds an empty map. eq may be nil, in which case
// comparisons fall back to octet equality.
func NewAttributeMap(eq EqualityFunc) *AttributeMap {
	if eq == nil {
		eq = octetEqualityFunc
	}
	return &AttributeMap{index: map[string]int{}, eq: eq}
}

func foldKey(name string) string { return strings.ToLower(name) }

// Names returns attribute descriptions in insertion order.
func (m *AttributeMap) Names() []string { return append([]string(nil), m.order...) }

// Get returns the value sequence for name and whether it is present.
func (m *AttributeMap) Get(name string) ([]string, bool) {
	i, ok := m.index[foldKey(name)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), m.rows[i]...), true
}

// Has reports whether name is present (with at least a zero-length
// value sequence; a present attribute is not the same as an absent
// one even if replace emptied it and Remove was never called).
func (m *AttributeMap) Has(name string) bool {
	_, ok := m.index[foldKey(name)]
	return ok
}

// Replace sets name's value sequence to values verbatim, inserting the
// key (with this spelling) if absent.
func (m *AttributeMap) Replace(name string, values []string) {
	key := foldKey(name)
	values = append([]string(nil), values...)
	if i, ok := m.index[key]; ok {
		m.rows[i] = values
		return
	}
	m.index[key] = len(m.order)
	m.order = append(m.order, name)
	m.rows = append(m.rows, values)
}

// Remove deletes name entirely, returning whether it was present.
func (m *AttributeMap) Remove(name string) bool {
	key := foldKey(name)
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	m.order = append(m.order[:i], m.order[i+1:]...)
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
	return true
}

// Add appends each of values to name's sequence, skipping any value
// already present under the equality rule (per-attribute set
// semantics). Returns the values actually appended.
func (m *AttributeMap) Add(name string, values ...string) ([]string, error) {
	existing, _ := m.Get(name)
	var added []string
	for _, v := range values {
		dup := false
		for _, e := range existing {
			ok, err := m.eq(name, e, v)
			if err != nil {
				return nil, err
			}
			if ok {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, v)
			added = append(added, v)
		}
	}
	m.Replace(displaySpellingOr(m, name), existing)
	return added, nil
}

func displaySpellingOr(m *AttributeMap, name string) string {
	if i, ok := m.index[foldKey(name)]; ok {
		return m.order[i]
	}
	return name
}

// Delete removes each of values from name's sequence under the
// equality rule, leaving non-present values untouched (a no-op).
// Returns the values actually removed.
func (m *AttributeMap) Delete(name string, values ...string) ([]string, error) {
	existing, ok := m.Get(name)
	if !ok {
		return nil, nil
	}

	var removed []string
	kept := existing[:0:0]
	for _, e := range existing {
		match := false
		for _, v := range values {
			ok, err := m.eq(name, e, v)
			if err != nil {
				return nil, err
			}
			if ok {
				match = true
				break
			}
		}
		if match {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	m.Replace(displaySpellingOr(m, name), kept)
	return removed, nil
}

// Contains reports whether name's sequence already contains a value
// equal to v under the equality rule.
func (m *AttributeMap) Contains(name, v string) (bool, error) {
	existing, ok := m.Get(name)
	if !ok {
		return false, nil
	}
	for _, e := range existing {
		eq, err := m.eq(name, e, v)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}
