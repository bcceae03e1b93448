package clock

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// randomToken returns a base64url-encoded token carrying at least bits of
// entropy. crypto/rand is the only CSPRNG available in the retrieval pack
// that is appropriate here — no third-party library in the examples adds
// anything crypto/rand doesn't already provide for raw random bytes, so
// using the standard library is the idiomatic choice the pack itself makes
// for token generation.
func randomToken(bits int) (string, error) {
	if bits <= 0 {
		bits = 128
	}
	n := (bits + 7) / 8
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("clock: generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
