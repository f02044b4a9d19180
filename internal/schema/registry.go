package schema

import (
	"log"
	"os"
	"strings"
	"sync"
)

var logger = log.New(os.Stderr, "schema: ", log.LstdFlags)

// Registry holds every attribute type, object class, syntax rule and
// matching rule known to a connection, indexed for lookup by OID and by
// case-insensitive name. Registration is idempotent per spec.md 4.4:
// registering an identical element (by OID and normalised definition)
// is a no-op, and registering a conflicting one fails.
type Registry struct {
	mu sync.RWMutex

	attrsByOID  map[OID]AttributeType
	attrsByName map[string]OID

	classesByOID  map[OID]ObjectClass
	classesByName map[string]OID

	syntaxes    map[OID]SyntaxRule
	matching    map[OID]MatchingRule
	matchByName map[string]OID
}

// NewRegistry builds an empty registry seeded with the RFC 4517 syntax
// rules and RFC 4513/4517 matching rules this package ships built in.
func NewRegistry() *Registry {
	r := &Registry{
		attrsByOID:    map[OID]AttributeType{},
		attrsByName:   map[string]OID{},
		classesByOID:  map[OID]ObjectClass{},
		classesByName: map[string]OID{},
		syntaxes:      map[OID]SyntaxRule{},
		matching:      map[OID]MatchingRule{},
		matchByName:   map[string]OID{},
	}
	seedBuiltins(r)
	return r
}

func foldName(s string) string { return strings.ToLower(s) }

// RegisterAttributeType adds at to the registry. A second registration
// with the same OID and an identical normalised definition is a no-op;
// a conflicting one returns *ConflictError.
func (r *Registry) RegisterAttributeType(at AttributeType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.attrsByOID[at.OID]; ok {
		if existing.definition == at.definition {
			return nil
		}
		return &ConflictError{OID: at.OID, Existing: existing.definition, New: at.definition}
	}

	r.attrsByOID[at.OID] = at
	r.attrsByName[foldName(string(at.OID))] = at.OID
	for _, n := range at.Names {
		r.attrsByName[foldName(n)] = at.OID
	}
	return nil
}

// RegisterObjectClass adds oc to the registry under the same idempotency
// rule as RegisterAttributeType.
func (r *Registry) RegisterObjectClass(oc ObjectClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.classesByOID[oc.OID]; ok {
		if existing.definition == oc.definition {
			return nil
		}
		return &ConflictError{OID: oc.OID, Existing: existing.definition, New: oc.definition}
	}

	r.classesByOID[oc.OID] = oc
	r.classesByName[foldName(string(oc.OID))] = oc.OID
	for _, n := range oc.Names {
		r.classesByName[foldName(n)] = oc.OID
	}
	return nil
}

// RegisterSyntax adds a syntax rule, keyed by OID only (RFC 4512
// syntaxes have no name aliases).
func (r *Registry) RegisterSyntax(s SyntaxRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syntaxes[s.OID] = s
}

// RegisterMatchingRule adds a matching rule, indexed by OID and name.
func (r *Registry) RegisterMatchingRule(m MatchingRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matching[m.OID] = m
	if m.Name != "" {
		r.matchByName[foldName(m.Name)] = m.OID
	}
	r.matchByName[foldName(string(m.OID))] = m.OID
}

// AttributeByName resolves a name or OID to its AttributeType. ok is
// false for an unknown attribute, which per spec.md 4.4 is a permitted
// condition the caller degrades gracefully for (octet equality, no
// validation), not an error.
func (r *Registry) AttributeByName(nameOrOID string) (AttributeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oid, ok := r.attrsByName[foldName(nameOrOID)]
	if !ok {
		return AttributeType{}, false
	}
	return r.attrsByOID[oid], true
}

// ObjectClassByName resolves a name or OID to its ObjectClass.
func (r *Registry) ObjectClassByName(nameOrOID string) (ObjectClass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oid, ok := r.classesByName[foldName(nameOrOID)]
	if !ok {
		return ObjectClass{}, false
	}
	return r.classesByOID[oid], true
}

// SyntaxByOID resolves a syntax rule by its OID.
func (r *Registry) SyntaxByOID(oid OID) (SyntaxRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.syntaxes[oid]
	return s, ok
}

// MatchingRuleByName resolves a matching rule by name or OID.
func (r *Registry) MatchingRuleByName(nameOrOID string) (MatchingRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oid, ok := r.matchByName[foldName(nameOrOID)]
	if !ok {
		return MatchingRule{}, false
	}
	m, ok := r.matching[oid]
	return m, ok
}

// EqualityRuleFor returns the equality matching rule governing an
// attribute, walking SUP chains the way RFC 4512 attribute inheritance
// requires, or ok=false if the attribute (or its equality rule) is
// unknown.
func (r *Registry) EqualityRuleFor(attrNameOrOID string) (MatchingRule, bool) {
	at, ok := r.AttributeByName(attrNameOrOID)
	for ok && at.Equality == "" && at.Sup != "" {
		at, ok = r.AttributeByName(at.Sup)
	}
	if !ok || at.Equality == "" {
		return MatchingRule{}, false
	}
	return r.MatchingRuleByName(at.Equality)
}

// Equal compares two values of the named attribute using its equality
// matching rule (after Prep), falling back to octet equality per
// spec.md 4.4's unknown-attribute resolution policy and logging that
// fallback instead of erroring.
func (r *Registry) Equal(attrNameOrOID, a, b string) (bool, error) {
	mr, ok := r.EqualityRuleFor(attrNameOrOID)
	if !ok {
		logger.Printf("no equality rule for %q, falling back to octet equality", attrNameOrOID)
		return a == b, nil
	}

	pa, err := Prepare(mr, a)
	if err != nil {
		return false, err
	}
	pb, err := Prepare(mr, b)
	if err != nil {
		return false, err
	}
	if mr.Match != nil {
		return mr.Match(pa, pb)
	}
	return pa == pb, nil
}
