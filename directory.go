package ldapcore

import (
	"github.com/georgib0y/ldapcore/internal/entry"
	"github.com/georgib0y/ldapcore/internal/filter"
	"github.com/georgib0y/ldapcore/internal/message"
	"github.com/georgib0y/ldapcore/internal/modify"
	"github.com/georgib0y/ldapcore/internal/schema"
)

// Directory is a local mutable view of one entry bound to a
// connection: its DN, a cached attribute map, and an optional relative
// scope whose presence switches Find to a one-level search (spec.md 4.8).
type Directory struct {
	conn          *Conn
	dn            entry.DN
	relativeScope message.SearchScope
	hasRelScope   bool
	attrs         *entry.AttributeMap
	reg           *schema.Registry
}

// DirectoryOption configures a new Directory.
type DirectoryOption func(*Directory)

// WithRelativeScope records scope as the object's relative scope and
// marks it configured. Once configured, Find searches one level below
// the object whatever scope value was given; the value itself is only
// carried over to Directory objects that Find and GetChild return.
func WithRelativeScope(scope message.SearchScope) DirectoryOption {
	return func(d *Directory) { d.relativeScope = scope; d.hasRelScope = true }
}

// WithSchemaRegistry attaches a schema.Registry so the object's
// attribute map compares values under each attribute's real equality
// rule instead of octet equality.
func WithSchemaRegistry(reg *schema.Registry) DirectoryOption {
	return func(d *Directory) { d.reg = reg }
}

// WithKnownAttributes seeds the object's local attribute cache, e.g.
// from a prior search result, so Modify can skip the prefetch.
func WithKnownAttributes(attrs *entry.AttributeMap) DirectoryOption {
	return func(d *Directory) { d.attrs = attrs }
}

// NewDirectory binds a Directory object to conn and dn.
func NewDirectory(conn *Conn, dn entry.DN, opts ...DirectoryOption) *Directory {
	d := &Directory{conn: conn, dn: dn, relativeScope: message.ScopeWholeSubtree}
	for _, o := range opts {
		o(d)
	}
	if d.attrs == nil {
		d.attrs = entry.NewAttributeMap(d.equalityFunc())
	}
	return d
}

// equalityFunc returns an unnamed function value (rather than
// entry.EqualityFunc or modify.EqualityFunc) so it is directly
// assignable to either named parameter type below.
func (d *Directory) equalityFunc() func(attr, a, b string) (bool, error) {
	if d.reg == nil {
		return nil
	}
	return d.reg.Equal
}

// DN returns the object's distinguished name.
func (d *Directory) DN() entry.DN { return d.dn }

// Attributes returns the object's locally cached attribute map; it is
// only as fresh as the last search or modify that populated it.
func (d *Directory) Attributes() *entry.AttributeMap { return d.attrs }

// fromSearchResultEntry builds a Directory from one SearchResultEntry,
// inheriting the parent's scope/schema configuration.
func (d *Directory) fromSearchResultEntry(e *message.SearchResultEntry) (*Directory, error) {
	dn, err := entry.ParseDN(e.ObjectName)
	if err != nil {
		return nil, err
	}

	attrs := entry.NewAttributeMap(d.equalityFunc())
	for _, a := range e.Attributes {
		attrs.Replace(a.Type, a.Values)
	}

	child := &Directory{conn: d.conn, dn: dn, relativeScope: d.relativeScope, hasRelScope: d.hasRelScope, reg: d.reg, attrs: attrs}
	return child, nil
}

// Find resolves rdn relative to d: a one-scoped base search when a
// relative scope was configured, or a subtree search otherwise
// (spec.md 4.8).
func (d *Directory) Find(rdn entry.RDN) (*Directory, error) {
	scope := message.ScopeWholeSubtree
	if d.hasRelScope {
		scope = message.ScopeSingleLevel
	}

	f, err := rdnFilter(rdn)
	if err != nil {
		return nil, err
	}

	req := &message.SearchRequest{
		BaseObject: d.dn.String(),
		Scope:      scope,
		Filter:     f,
		SizeLimit:  1,
	}
	return d.searchOne(req)
}

// GetChild performs a base-scoped search at d's DN with rdn appended,
// confirming the child exists and returning its bound Directory.
func (d *Directory) GetChild(rdn entry.RDN) (*Directory, error) {
	childDN := d.dn.Child(rdn)
	req := &message.SearchRequest{
		BaseObject: childDN.String(),
		Scope:      message.ScopeBaseObject,
		Filter:     filter.Present{Attr: "objectClass"},
		SizeLimit:  1,
	}
	return d.searchOne(req)
}

func (d *Directory) searchOne(req *message.SearchRequest) (*Directory, error) {
	cur, err := d.conn.Search(req, nil)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, &NotFoundError{BaseDN: req.BaseObject}
	}

	return d.fromSearchResultEntry(cur.Entry())
}

func rdnFilter(rdn entry.RDN) (message.Filter, error) {
	avas := rdn.AVAs()
	if len(avas) == 0 {
		return nil, &entry.InvalidDNError{Msg: "empty RDN"}
	}
	if len(avas) == 1 {
		return filter.Equality{Attr: avas[0].Attr, Value: avas[0].Value}, nil
	}

	and := make(filter.And, len(avas))
	for i, a := range avas {
		and[i] = filter.Equality{Attr: a.Attr, Value: a.Value}
	}
	return and, nil
}

// AddAttrs, DeleteAttrs and ReplaceAttrs build the modify.Request list
// for one high-level non-strict Modify call.
func AddAttrs(values map[string][]string) []modify.Request { return toRequests(modify.OpAdd, values) }
func DeleteAttrs(values map[string][]string) []modify.Request {
	return toRequests(modify.OpDelete, values)
}
func ReplaceAttrs(values map[string][]string) []modify.Request {
	return toRequests(modify.OpReplace, values)
}

func toRequests(op modify.Op, values map[string][]string) []modify.Request {
	reqs := make([]modify.Request, 0, len(values))
	for attr, vals := range values {
		reqs = append(reqs, modify.Request{Attr: attr, Op: op, Values: modify.Values(vals...)})
	}
	return reqs
}

// Modify plans reqs against d's known (or freshly fetched) attribute
// state and applies the resulting modifyRequest, then mirrors the
// change into d's local attribute map on success (spec.md 4.7 step 6).
func (d *Directory) Modify(reqs []modify.Request, strict bool) error {
	changes, err := modify.Plan(reqs, strict, d.attrs, d.prefetch, d.equalityFunc(), d.conn.cfg.emptyListPolicy, d.conn.logger.Printf)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	if err := d.conn.ModifyRaw(d.dn.String(), changes, nil); err != nil {
		return err
	}

	d.applyChanges(changes)
	return nil
}

func (d *Directory) prefetch(attrs []string) (map[string][]string, error) {
	f, err := rdnFilter(lastRDN(d.dn))
	if err != nil {
		f = filter.Present{Attr: "objectClass"}
	}
	req := &message.SearchRequest{
		BaseObject: d.dn.String(),
		Scope:      message.ScopeBaseObject,
		Filter:     f,
		Attributes: attrs,
	}
	cur, err := d.conn.Search(req, nil)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	out := map[string][]string{}
	for cur.Next() {
		if e := cur.Entry(); e != nil {
			for _, a := range e.Attributes {
				out[a.Type] = a.Values
			}
		}
	}
	return out, cur.Err()
}

func lastRDN(dn entry.DN) entry.RDN {
	if r, ok := dn.Leaf(); ok {
		return r
	}
	return entry.RDN{}
}

func (d *Directory) applyChanges(changes []message.Change) {
	for _, c := range changes {
		switch c.Operation {
		case message.ModAdd:
			d.attrs.Add(c.Modification.Type, c.Modification.Values...)
		case message.ModDelete:
			if c.Modification.Values == nil {
				d.attrs.Remove(c.Modification.Type)
			} else {
				d.attrs.Delete(c.Modification.Type, c.Modification.Values...)
			}
		case message.ModReplace:
			d.attrs.Replace(c.Modification.Type, c.Modification.Values)
		}
	}
}
