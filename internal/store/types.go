// Package store is the sole owner of persistent state (§3, §4.1): users,
// sessions, verification tokens, rate counters, and the analytics/save
// append streams. No other package reaches around it.
package store

import (
	"errors"
	"time"
)

// Tier mirrors the closed set of account tiers named in §4.8.
type Tier string

const (
	TierAnonymous  Tier = "anonymous"
	TierLightweight Tier = "lightweight"
	TierFull       Tier = "full"
	TierPremium    Tier = "premium"
)

// User is the account entity (§3).
type User struct {
	ID         string
	Email      string
	Verified   bool
	Tier       Tier
	CreatedAt  time.Time
}

// VerificationToken binds one opaque, single-use token to an email.
type VerificationToken struct {
	Token     string
	Email     string
	ExpiresAt time.Time
	ConsumedAt *time.Time
}

// Session is an opaque bearer token bound to a user, with a grace window
// for the token it replaced during a refresh (§3).
type Session struct {
	Token      string
	UserID     string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	GraceUntil *time.Time // non-nil only for a token superseded by a refresh
}

// RateDecision is the outcome of a rate-limit check (§4.6).
type RateDecision struct {
	Allowed      bool
	RetryAfter   time.Duration // meaningful only when !Allowed
}

// AnalyticsEvent is one append-only record (§3).
type AnalyticsEvent struct {
	ID        string
	UserID    *string
	Session   *string
	EventType string
	Payload   []byte
	Timestamp time.Time
}

// SavedChat is the serialized message list behind POST /chat/save (§4.8).
type SavedChat struct {
	ID       string
	UserID   string
	Title    string
	Messages []byte // JSON-encoded []{role, content}
	SavedAt  time.Time
}

// Domain errors returned by Store operations. Handlers translate these to
// HTTP envelopes; the Store itself never panics or uses exceptions for
// control flow (§7 "Propagation policy").
var (
	ErrAlreadyExists     = errors.New("store: already exists")
	ErrConsentRequired   = errors.New("store: consent required")
	ErrNotFound          = errors.New("store: not found")
	ErrExpired           = errors.New("store: expired")
	ErrUnavailable       = errors.New("store: unavailable")
)
