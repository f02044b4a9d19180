// Package modify implements the high-level modification planner
// (spec.md C7): turning add/delete/replace requests on an entry's
// attributes into a minimal, server-safe modifyRequest, optionally
// consulting known or freshly queried state to drop redundant changes.
package modify

import (
	"fmt"

	"github.com/georgib0y/ldapcore/internal/message"
)

// ValueList is the polymorphic value a modification targets: either a
// concrete list, or the DELETE_ALL sentinel meaning "every value this
// attribute currently has" (spec.md's AttrValues = Concrete([Value]) |
// All design note).
type ValueList struct {
	all    bool
	values []string
}

// Values builds a concrete ValueList.
func Values(vs ...string) ValueList { return ValueList{values: vs} }

// DeleteAll is the DELETE_ALL sentinel.
func DeleteAll() ValueList { return ValueList{all: true} }

// IsAll reports whether v is the DELETE_ALL sentinel.
func (v ValueList) IsAll() bool { return v.all }

// Slice returns v's concrete values, or nil if v is DELETE_ALL.
func (v ValueList) Slice() []string { return v.values }

// Op is the kind of change requested for one attribute.
type Op int

const (
	OpAdd Op = iota
	OpDelete
	OpReplace
)

// Request is one desired change to one attribute, the planner's unit
// of input (spec.md 4.7: add_attrs/delete_attrs/replace_attrs/raw).
type Request struct {
	Attr   string
	Op     Op
	Values ValueList
}

// InvalidValueError reports a request that is structurally impossible:
// DELETE_ALL is only meaningful for delete and replace, never add.
type InvalidValueError struct{ Attr string }

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("modify: DELETE_ALL is not valid for an add on %q", e.Attr)
}

// AddModlist, DeleteModlist and ReplaceModlist build a single raw
// message.Change, the equivalent of laurelin's Modlist helpers, for
// callers who want to bypass the planner entirely.
func AddModlist(attr string, values ...string) message.Change {
	return rawChange(message.ModAdd, attr, values)
}

func DeleteModlist(attr string, values ...string) message.Change {
	return rawChange(message.ModDelete, attr, values)
}

func ReplaceModlist(attr string, values ...string) message.Change {
	return rawChange(message.ModReplace, attr, values)
}

func rawChange(op message.ModOperation, attr string, values []string) message.Change {
	return message.Change{
		Operation:    op,
		Modification: message.PartialAttribute{Type: attr, Values: values},
	}
}
