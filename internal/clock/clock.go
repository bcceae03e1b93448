// Package clock provides injectable time and id sources so tests never
// depend on the wall clock or on real randomness.
package clock

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. The real implementation wraps time.Now;
// tests substitute a fixed or steppable clock.
type Clock interface {
	Now() time.Time
}

// IDSource mints opaque identifiers.
type IDSource interface {
	// NewUUID returns a fresh UUID v4 string, used for anonymous session ids
	// and request ids.
	NewUUID() string
	// NewToken returns a cryptographically random, URL-safe token with at
	// least the given number of bits of entropy.
	NewToken(bits int) (string, error)
}

// System is the production Clock backed by time.Now.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// UUIDSource is the production IDSource.
type UUIDSource struct{}

func (UUIDSource) NewUUID() string {
	return uuid.New().String()
}

func (UUIDSource) NewToken(bits int) (string, error) {
	return randomToken(bits)
}
