package schema

import "fmt"

// ConflictError is returned when registering a schema element whose OID
// already names a different, non-identical definition.
type ConflictError struct {
	OID      OID
	Existing string
	New      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schema: conflicting definition for %s: %q vs %q", e.OID, e.Existing, e.New)
}

// NotFoundError is returned when a name or OID resolves to nothing.
type NotFoundError struct {
	NameOrOID string
	Kind      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema: unknown %s %q", e.Kind, e.NameOrOID)
}
