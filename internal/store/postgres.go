package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/crypto/blake2b"
)

// PostgresStore is the Store implementation backing production deployments
// (§4.1). Every mutating operation that must be linearizable runs inside a
// single transaction with an explicit row lock, grounded on the teacher's
// repository pattern (sqlx.Get/Exec plus fmt.Errorf wrapping and
// logx.Errorf on failure) in
// backend/services/gateway/internal/repository/user_repository.go.
//
// Bearer and verification tokens are never written to the token column in
// the clear: everything that touches sessions/verification_tokens by token
// value hashes it first with a key derived from tokenHashKey, so a read of
// the database alone (a backup, a replica, an operator query) never yields
// a usable credential, the same way a leaked password hash doesn't hand
// over the password.
type PostgresStore struct {
	db           *sqlx.DB
	tokenHashKey [32]byte
}

// NewPostgresStore wraps an already-connected pool. secretKey seeds the
// keyed digest tokens are hashed under before touching the database; it is
// hashed down to a fixed 32 bytes first since blake2b's native key
// parameter caps at 64 bytes and SECRET_KEY's only other constraint is a
// minimum length (§4.2, config.Validate). Use Connect to build the pool.
func NewPostgresStore(db *sqlx.DB, secretKey string) *PostgresStore {
	return &PostgresStore{db: db, tokenHashKey: blake2b.Sum256([]byte(secretKey))}
}

// hashToken computes the keyed digest a token is stored and looked up
// under, so the plaintext token exists only in the client's hands and in
// memory for the duration of one request.
func (s *PostgresStore) hashToken(token string) string {
	h, err := blake2b.New256(s.tokenHashKey[:])
	if err != nil {
		// tokenHashKey is always exactly 32 bytes, within blake2b's 64-byte
		// key limit, so New256 cannot fail here.
		panic(fmt.Sprintf("store: blake2b.New256: %v", err))
	}
	h.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// newOpaqueToken mints a server-revocable bearer token (§3, §4.7): random
// bytes, not a signed/stateless structure, so a single DELETE revokes it.
func newOpaqueToken(bits int) (string, error) {
	buf := make([]byte, bits/8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("store: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ---- users -----------------------------------------------------------

func (s *PostgresStore) CreateUser(ctx context.Context, email string, consent bool) (User, error) {
	if !consent {
		return User{}, ErrConsentRequired
	}

	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, verified, tier, created_at)
		VALUES ($1, $2, FALSE, $3, $4)`,
		id, email, TierLightweight, now)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrAlreadyExists
		}
		logx.Errorf("store: create user: %v", err)
		return User{}, fmt.Errorf("store: create user: %w", err)
	}

	return User{ID: id.String(), Email: email, Verified: false, Tier: TierLightweight, CreatedAt: now}, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var row struct {
		ID        string    `db:"id"`
		Email     string    `db:"email"`
		Verified  bool      `db:"verified"`
		Tier      string    `db:"tier"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT id, email, verified, tier, created_at FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		logx.Errorf("store: get user by id: %v", err)
		return User{}, fmt.Errorf("store: get user by id: %w", err)
	}
	return User{ID: row.ID, Email: row.Email, Verified: row.Verified, Tier: Tier(row.Tier), CreatedAt: row.CreatedAt}, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var row struct {
		ID        string    `db:"id"`
		Email     string    `db:"email"`
		Verified  bool      `db:"verified"`
		Tier      string    `db:"tier"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT id, email, verified, tier, created_at FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		logx.Errorf("store: get user by email: %v", err)
		return User{}, fmt.Errorf("store: get user by email: %w", err)
	}
	return User{ID: row.ID, Email: row.Email, Verified: row.Verified, Tier: Tier(row.Tier), CreatedAt: row.CreatedAt}, nil
}

func (s *PostgresStore) MarkUserVerified(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, userID)
	if err != nil {
		logx.Errorf("store: mark user verified: %v", err)
		return fmt.Errorf("store: mark user verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: mark user verified: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- verification tokens ----------------------------------------------

func (s *PostgresStore) PutVerificationToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: put verification token: begin: %w", err)
	}
	defer tx.Rollback()

	// A fresh signup supersedes any still-valid token already issued for
	// this email, so only the most recent one is ever consumable (§4.3).
	if _, err := tx.ExecContext(ctx, `
		UPDATE verification_tokens SET consumed_at = now()
		WHERE email = $1 AND consumed_at IS NULL`, email); err != nil {
		return fmt.Errorf("store: invalidate prior verification tokens: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verification_tokens (token, email, expires_at, created_at)
		VALUES ($1, $2, $3, now())`, s.hashToken(token), email, expiresAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("store: insert verification token: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (string, error) {
	hashed := s.hashToken(token)
	var email string
	err := s.db.QueryRowContext(ctx, `
		UPDATE verification_tokens
		SET consumed_at = $2
		WHERE token = $1 AND consumed_at IS NULL AND expires_at > $2
		RETURNING email`, hashed, now).Scan(&email)
	if err == nil {
		return email, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logx.Errorf("store: consume verification token: %v", err)
		return "", fmt.Errorf("store: consume verification token: %w", err)
	}

	// The conditional update touched no row: find out why so the caller can
	// distinguish "never existed" from "expired" from "already used".
	var expiresAt time.Time
	var consumedAt sql.NullTime
	lookupErr := s.db.QueryRowContext(ctx, `
		SELECT expires_at, consumed_at FROM verification_tokens WHERE token = $1`, hashed).
		Scan(&expiresAt, &consumedAt)
	if errors.Is(lookupErr, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if lookupErr != nil {
		return "", fmt.Errorf("store: consume verification token: %w", lookupErr)
	}
	if consumedAt.Valid {
		return "", ErrAlreadyExists
	}
	return "", ErrExpired
}

// ---- sessions -----------------------------------------------------------

func (s *PostgresStore) CreateSession(ctx context.Context, userID string, ttl time.Duration, now time.Time) (Session, error) {
	token, err := newOpaqueToken(256)
	if err != nil {
		return Session{}, err
	}
	expiresAt := now.Add(ttl)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`, s.hashToken(token), userID, now, expiresAt)
	if err != nil {
		logx.Errorf("store: create session: %v", err)
		return Session{}, fmt.Errorf("store: create session: %w", err)
	}
	return Session{Token: token, UserID: userID, CreatedAt: now, ExpiresAt: expiresAt}, nil
}

func (s *PostgresStore) LookupSession(ctx context.Context, token string, now time.Time) (Session, User, error) {
	var row struct {
		UserID     string       `db:"user_id"`
		CreatedAt  time.Time    `db:"created_at"`
		ExpiresAt  time.Time    `db:"expires_at"`
		GraceUntil sql.NullTime `db:"grace_until"`
		Email      string       `db:"email"`
		Verified   bool         `db:"verified"`
		Tier       string       `db:"tier"`
		UserCreate time.Time    `db:"user_created_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT s.user_id, s.created_at, s.expires_at, s.grace_until,
		       u.email, u.verified, u.tier, u.created_at AS user_created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1`, s.hashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, User{}, ErrNotFound
		}
		logx.Errorf("store: lookup session: %v", err)
		return Session{}, User{}, fmt.Errorf("store: lookup session: %w", err)
	}

	stillLive := row.ExpiresAt.After(now)
	inGrace := row.GraceUntil.Valid && row.GraceUntil.Time.After(now)
	if !stillLive && !inGrace {
		return Session{}, User{}, ErrExpired
	}

	// token is the caller's own input, the only plaintext form that exists;
	// the row itself only ever carries the hash.
	session := Session{Token: token, UserID: row.UserID, CreatedAt: row.CreatedAt, ExpiresAt: row.ExpiresAt}
	if row.GraceUntil.Valid {
		t := row.GraceUntil.Time
		session.GraceUntil = &t
	}
	user := User{ID: row.UserID, Email: row.Email, Verified: row.Verified, Tier: Tier(row.Tier), CreatedAt: row.UserCreate}
	return session, user, nil
}

func (s *PostgresStore) ExtendOrRotateSession(ctx context.Context, oldToken string, ttl, grace time.Duration, now time.Time) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: extend session: begin: %w", err)
	}
	defer tx.Rollback()

	hashedOld := s.hashToken(oldToken)
	var userID string
	var expiresAt time.Time
	var graceUntil sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, expires_at, grace_until FROM sessions WHERE token = $1 FOR UPDATE`, hashedOld).
		Scan(&userID, &expiresAt, &graceUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: extend session: lookup: %w", err)
	}

	stillLive := expiresAt.After(now)
	inGrace := graceUntil.Valid && graceUntil.Time.After(now)
	if !stillLive && !inGrace {
		return "", ErrExpired
	}

	newToken, err := newOpaqueToken(256)
	if err != nil {
		return "", err
	}
	newExpiresAt := now.Add(ttl)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`, s.hashToken(newToken), userID, now, newExpiresAt); err != nil {
		return "", fmt.Errorf("store: extend session: insert: %w", err)
	}

	graceDeadline := now.Add(grace)
	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET grace_until = $2 WHERE token = $1`, hashedOld, graceDeadline); err != nil {
		return "", fmt.Errorf("store: extend session: grace: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: extend session: commit: %w", err)
	}
	return newToken, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, s.hashToken(token)); err != nil {
		logx.Errorf("store: delete session: %v", err)
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}

// ---- rate limiting -------------------------------------------------------

// CheckAndBumpRate implements the fixed-window counter (§4.6). A row for
// (subject, action) is seeded with ON CONFLICT DO NOTHING before the locking
// read, so two concurrent first-time requests for the same brand-new subject
// never race an INSERT against each other the way a plain "SELECT FOR
// UPDATE, insert on no-rows" would: FOR UPDATE cannot lock a row that
// doesn't exist yet, so both would otherwise observe sql.ErrNoRows and both
// attempt the INSERT, with the loser hitting the (subject, action) unique
// constraint (sql/schema.sql). Seeding first means the SELECT FOR UPDATE
// below always has a row to lock, making the read-modify-write atomic
// across concurrent requests the same way CreateUser's isUniqueViolation
// handling avoids a bare race on the users table.
func (s *PostgresStore) CheckAndBumpRate(ctx context.Context, subject, action string, max int, window time.Duration, now time.Time) (RateDecision, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return RateDecision{}, fmt.Errorf("store: check rate: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rate_counters (subject, action, count, window_start)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (subject, action) DO NOTHING`, subject, action, now); err != nil {
		return RateDecision{}, fmt.Errorf("store: check rate: seed: %w", err)
	}

	var count int
	var windowStart time.Time
	if err := tx.QueryRowContext(ctx, `
		SELECT count, window_start FROM rate_counters
		WHERE subject = $1 AND action = $2 FOR UPDATE`, subject, action).
		Scan(&count, &windowStart); err != nil {
		return RateDecision{}, fmt.Errorf("store: check rate: lookup: %w", err)
	}

	elapsed := now.Sub(windowStart)
	if elapsed >= window {
		if _, err := tx.ExecContext(ctx, `
			UPDATE rate_counters SET count = 1, window_start = $3
			WHERE subject = $1 AND action = $2`, subject, action, now); err != nil {
			return RateDecision{}, fmt.Errorf("store: check rate: reset: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return RateDecision{}, fmt.Errorf("store: check rate: commit: %w", err)
		}
		return RateDecision{Allowed: true}, nil
	}

	if count >= max {
		if err := tx.Commit(); err != nil {
			return RateDecision{}, fmt.Errorf("store: check rate: commit: %w", err)
		}
		return RateDecision{Allowed: false, RetryAfter: window - elapsed}, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE rate_counters SET count = count + 1
		WHERE subject = $1 AND action = $2`, subject, action); err != nil {
		return RateDecision{}, fmt.Errorf("store: check rate: increment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return RateDecision{}, fmt.Errorf("store: check rate: commit: %w", err)
	}
	return RateDecision{Allowed: true}, nil
}

// ---- analytics and saved chats -------------------------------------------

func (s *PostgresStore) AppendEvent(ctx context.Context, event AnalyticsEvent) error {
	id := event.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (id, user_id, session_token, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, event.UserID, event.Session, event.EventType, event.Payload, event.Timestamp)
	if err != nil {
		logx.Errorf("store: append event: %v", err)
		return fmt.Errorf("store: append event: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveChat(ctx context.Context, userID, title string, messages []byte, now time.Time) (SavedChat, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_chats (id, user_id, title, messages, saved_at)
		VALUES ($1, $2, $3, $4, $5)`, id, userID, title, messages, now)
	if err != nil {
		logx.Errorf("store: save chat: %v", err)
		return SavedChat{}, fmt.Errorf("store: save chat: %w", err)
	}
	return SavedChat{ID: id, UserID: userID, Title: title, Messages: messages, SavedAt: now}, nil
}

// ---- maintenance ----------------------------------------------------------

func (s *PostgresStore) PruneExpired(ctx context.Context, now time.Time) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE expires_at < $1 AND (grace_until IS NULL OR grace_until < $1)`, now); err != nil {
		return fmt.Errorf("store: prune sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM verification_tokens WHERE expires_at < $1`, now); err != nil {
		return fmt.Errorf("store: prune verification tokens: %w", err)
	}
	return nil
}
