// Package ident generates record identifiers of the form prefix + UUIDv7.
package ident

import "github.com/google/uuid"

// Record type prefixes.
const (
	PatientPrefix   = "p-"
	EncounterPrefix = "e-"
	NotePrefix      = "n-"
)

// New returns prefix followed by a version 7 UUID. UUIDv7 embeds a
// millisecond timestamp and random bits, so identifiers never collide in
// practice and sort by creation time.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source fails.
		id = uuid.New()
	}
	return prefix + id.String()
}
