package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
)

// Connect opens and validates a Postgres connection pool, the same
// connect-then-ping-then-configure sequence the teacher's
// third_party/database.NewPostgresConnection uses, adapted to take a single
// DSN (this service's DATABASE_URL) rather than discrete host/user/password
// fields, and a caller-supplied pool size instead of a hardcoded 25.
func Connect(dsn string, maxOpenConns int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Errorf("Failed to connect to PostgreSQL: %v", err)
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		logx.Errorf("Failed to ping PostgreSQL: %v", err)
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	logx.Info("store: connected to PostgreSQL")
	return db, nil
}
