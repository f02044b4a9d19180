package modify

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/message"
)

// EmptyListPolicy governs what Plan does with a replace request whose
// value list is empty (spec.md 4.7 step 4: a replace with an empty list
// semantically deletes every value of the attribute, so callers may
// want it ignored, warned about, rejected outright, or sent as-is).
type EmptyListPolicy int

const (
	EmptyListIgnore EmptyListPolicy = iota
	EmptyListWarn
	EmptyListError
	EmptyListForward
)

// EmptyListRejectedError is returned by Plan when EmptyListError is
// configured and a replace request's value list is empty.
type EmptyListRejectedError struct{ Attr string }

func (e *EmptyListRejectedError) Error() string {
	return fmt.Sprintf("modify: replace with an empty value list for %q rejected by policy", e.Attr)
}

// EqualityFunc compares two values of an attribute under its matching
// rule (the same contract internal/entry.AttributeMap uses); nil falls
// back to octet equality.
type EqualityFunc func(attr, a, b string) (bool, error)

func octetEqual(_, a, b string) (bool, error) { return a == b, nil }

// KnownState is the subset of internal/entry.AttributeMap the planner
// needs to know an attribute's current values, satisfied directly by
// *entry.AttributeMap.
type KnownState interface {
	Get(name string) ([]string, bool)
}

// Prefetch fetches current values for the named attributes from the
// server (a base-scoped search in the real connection), used only when
// KnownState doesn't already have them cached.
type Prefetch func(attrs []string) (map[string][]string, error)

// Plan turns reqs into the minimal atomic modifyRequest change list
// per spec.md 4.7. strict mode skips all deduplication and known-state
// lookups, passing every request through as a raw Change. Non-strict
// mode drops add values already present and delete values not
// present, using known (if non-nil) and falling back to prefetch for
// whatever known doesn't have.
//
// policy governs an empty-valued replace request (see EmptyListPolicy);
// warnf, if non-nil, is called once per request EmptyListWarn lets
// through. Both only apply to the non-strict path, matching spec.md's
// framing of the empty-list policy as part of the high-level planner.
func Plan(reqs []Request, strict bool, known KnownState, prefetch Prefetch, eq EqualityFunc, policy EmptyListPolicy, warnf func(format string, args ...any)) ([]message.Change, error) {
	for _, r := range reqs {
		if r.Op == OpAdd && r.Values.IsAll() {
			return nil, &InvalidValueError{Attr: r.Attr}
		}
	}

	if strict {
		return rawPassthrough(reqs), nil
	}

	if eq == nil {
		eq = octetEqual
	}

	state, err := resolveState(reqs, known, prefetch)
	if err != nil {
		return nil, err
	}

	var changes []message.Change
	for _, r := range reqs {
		switch r.Op {
		case OpReplace:
			vals := r.Values.Slice()
			if len(vals) == 0 {
				switch policy {
				case EmptyListIgnore:
					continue
				case EmptyListError:
					return nil, &EmptyListRejectedError{Attr: r.Attr}
				case EmptyListWarn:
					if warnf != nil {
						warnf("modify: replacing %q with an empty list deletes all its values", r.Attr)
					}
				}
			}
			changes = append(changes, rawChange(message.ModReplace, r.Attr, vals))

		case OpAdd:
			existing := state[r.Attr]
			var survive []string
			for _, v := range r.Values.Slice() {
				dup := false
				for _, e := range existing {
					ok, err := eq(r.Attr, e, v)
					if err != nil {
						return nil, err
					}
					if ok {
						dup = true
						break
					}
				}
				if !dup {
					survive = append(survive, v)
					existing = append(existing, v)
				}
			}
			if len(survive) > 0 {
				changes = append(changes, rawChange(message.ModAdd, r.Attr, survive))
			}

		case OpDelete:
			if r.Values.IsAll() {
				changes = append(changes, rawChange(message.ModDelete, r.Attr, nil))
				continue
			}
			existing := state[r.Attr]
			var survive []string
			for _, v := range r.Values.Slice() {
				present := false
				for _, e := range existing {
					ok, err := eq(r.Attr, e, v)
					if err != nil {
						return nil, err
					}
					if ok {
						present = true
						break
					}
				}
				if present {
					survive = append(survive, v)
				}
			}
			if len(survive) > 0 {
				changes = append(changes, rawChange(message.ModDelete, r.Attr, survive))
			}
		}
	}

	return changes, nil
}

func rawPassthrough(reqs []Request) []message.Change {
	changes := make([]message.Change, 0, len(reqs))
	for _, r := range reqs {
		op := message.ModAdd
		switch r.Op {
		case OpDelete:
			op = message.ModDelete
		case OpReplace:
			op = message.ModReplace
		}
		changes = append(changes, rawChange(op, r.Attr, r.Values.Slice()))
	}
	return changes
}

// resolveState gathers current values for every attribute touched by
// an add or (non-DELETE_ALL) delete request, preferring known and
// falling back to a single batched prefetch for the rest.
func resolveState(reqs []Request, known KnownState, prefetch Prefetch) (map[string][]string, error) {
	state := map[string][]string{}
	var missing []string

	for _, r := range reqs {
		if r.Op == OpReplace {
			continue
		}
		if r.Op == OpDelete && r.Values.IsAll() {
			continue
		}
		if _, ok := state[r.Attr]; ok {
			continue
		}
		if known != nil {
			if vals, ok := known.Get(r.Attr); ok {
				state[r.Attr] = vals
				continue
			}
		}
		missing = append(missing, r.Attr)
	}

	if len(missing) > 0 && prefetch != nil {
		fetched, err := prefetch(missing)
		if err != nil {
			return nil, err
		}
		for attr, vals := range fetched {
			state[attr] = vals
		}
	}

	return state, nil
}
