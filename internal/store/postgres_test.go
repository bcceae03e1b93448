package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-only-secret-key-not-for-production-use"

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "postgres")
	return NewPostgresStore(db, testSecretKey), mock, func() { mockDB.Close() }
}

func TestConsumeVerificationToken_Success(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE verification_tokens`).
		WithArgs(s.hashToken("tok-1"), now).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@example.com"))

	email, err := s.ConsumeVerificationToken(context.Background(), "tok-1", now)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeVerificationToken_AlreadyConsumed(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE verification_tokens`).
		WithArgs(s.hashToken("tok-1"), now).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`SELECT expires_at, consumed_at`).
		WithArgs(s.hashToken("tok-1")).
		WillReturnRows(sqlmock.NewRows([]string{"expires_at", "consumed_at"}).
			AddRow(now.Add(time.Hour), now.Add(-time.Minute)))

	_, err := s.ConsumeVerificationToken(context.Background(), "tok-1", now)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeVerificationToken_Expired(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE verification_tokens`).
		WithArgs(s.hashToken("tok-1"), now).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`SELECT expires_at, consumed_at`).
		WithArgs(s.hashToken("tok-1")).
		WillReturnRows(sqlmock.NewRows([]string{"expires_at", "consumed_at"}).
			AddRow(now.Add(-time.Hour), nil))

	_, err := s.ConsumeVerificationToken(context.Background(), "tok-1", now)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeVerificationToken_NotFound(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE verification_tokens`).
		WithArgs(s.hashToken("tok-missing"), now).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`SELECT expires_at, consumed_at`).
		WithArgs(s.hashToken("tok-missing")).
		WillReturnError(sql.ErrNoRows)

	_, err := s.ConsumeVerificationToken(context.Background(), "tok-missing", now)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndBumpRate_FirstRequestInsertsCounter(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rate_counters`).
		WithArgs("user-1", "chat", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT count, window_start FROM rate_counters`).
		WithArgs("user-1", "chat").
		WillReturnRows(sqlmock.NewRows([]string{"count", "window_start"}).AddRow(0, now))
	mock.ExpectExec(`UPDATE rate_counters SET count = count \+ 1`).
		WithArgs("user-1", "chat").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decision, err := s.CheckAndBumpRate(context.Background(), "user-1", "chat", 10, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCheckAndBumpRate_SeedRaceLosesToConcurrentFirstRequest covers the case
// the seeding INSERT exists for: a concurrent request already inserted the
// row between this call's BeginTxx and its own seed attempt, so the ON
// CONFLICT DO NOTHING affects zero rows. The SELECT FOR UPDATE that follows
// still finds the row the other request created and proceeds normally,
// instead of racing a second INSERT against the unique (subject, action)
// constraint.
func TestCheckAndBumpRate_SeedRaceLosesToConcurrentFirstRequest(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rate_counters`).
		WithArgs("user-1", "chat", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count, window_start FROM rate_counters`).
		WithArgs("user-1", "chat").
		WillReturnRows(sqlmock.NewRows([]string{"count", "window_start"}).AddRow(1, now))
	mock.ExpectExec(`UPDATE rate_counters SET count = count \+ 1`).
		WithArgs("user-1", "chat").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decision, err := s.CheckAndBumpRate(context.Background(), "user-1", "chat", 10, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndBumpRate_DeniesAtLimit(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	windowStart := now.Add(-10 * time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rate_counters`).
		WithArgs("user-1", "chat", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count, window_start FROM rate_counters`).
		WithArgs("user-1", "chat").
		WillReturnRows(sqlmock.NewRows([]string{"count", "window_start"}).AddRow(10, windowStart))
	mock.ExpectCommit()

	decision, err := s.CheckAndBumpRate(context.Background(), "user-1", "chat", 10, time.Minute, now)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAndBumpRate_ResetsAfterWindowElapses(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	windowStart := now.Add(-2 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rate_counters`).
		WithArgs("user-1", "chat", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count, window_start FROM rate_counters`).
		WithArgs("user-1", "chat").
		WillReturnRows(sqlmock.NewRows([]string{"count", "window_start"}).AddRow(10, windowStart))
	mock.ExpectExec(`UPDATE rate_counters SET count = 1`).
		WithArgs("user-1", "chat", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decision, err := s.CheckAndBumpRate(context.Background(), "user-1", "chat", 10, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkUserVerified_NotFound(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE users SET verified = TRUE`).
		WithArgs("missing-user").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.MarkUserVerified(context.Background(), "missing-user")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
