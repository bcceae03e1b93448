package auth

import "errors"

// Typed result variants for the Auth Service (§4.7, §7). The HTTP surface
// translates these to envelopes; nothing here panics or uses exceptions for
// control flow.
var (
	ErrConsentRequired   = errors.New("auth: consent required")
	ErrInvalidEmail      = errors.New("auth: invalid email")
	ErrVerificationFailed = errors.New("auth: verification failed")
	ErrTokenExpired      = errors.New("auth: verification token expired")
	ErrSessionExpired    = errors.New("auth: session expired")
	ErrUnavailable       = errors.New("auth: store unavailable")
)
