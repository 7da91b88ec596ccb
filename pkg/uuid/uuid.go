// Package uuid re-exports google/uuid under the module's historical import
// path so call sites across the tree keep using uuid.UUID/uuid.New/uuid.Parse
// without churn, while the actual generation and parsing is delegated to a
// real, audited UUID implementation instead of a hand-rolled one.
package uuid

import "github.com/google/uuid"

// UUID is an alias for google/uuid.UUID: same memory layout, same
// MarshalJSON/UnmarshalJSON/MarshalText/UnmarshalText/MarshalBinary/
// UnmarshalBinary behaviour, so every existing struct field typed uuid.UUID
// keeps its JSON/SQL encoding unchanged.
type UUID = uuid.UUID

// Nil and NilUUID are both the zero UUID; NilUUID is kept for call sites
// written against the hand-rolled predecessor of this package.
var (
	Nil     = uuid.Nil
	NilUUID = uuid.Nil
)

// New returns a new random (v4) UUID, panicking only if the system's
// entropy source is broken (mirrors google/uuid.New's own contract).
func New() UUID {
	return uuid.New()
}

// Parse parses a canonical UUID string.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// ParseBytes parses a UUID from its canonical string form given as bytes.
func ParseBytes(b []byte) (UUID, error) {
	return uuid.ParseBytes(b)
}
