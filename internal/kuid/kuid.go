// Package kuid generates unique, time-ordered customer identifiers.
package kuid

import "github.com/google/uuid"

// New returns a fresh identifier: a UUIDv7 string, which encodes a 48-bit
// millisecond epoch timestamp followed by 74 random bits. Identifiers sort
// lexicographically in generation order to millisecond resolution, and the
// random tail makes collisions within one millisecond negligible.
//
// New never fails. An unreadable process randomness source panics, which
// is treated as a fatal startup condition.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}
