// Command seed-fixtures plants the integration-test fixture data named in
// spec.md §8 scenario 1: a not-yet-verified user and a fixed, still-valid
// verification token, so integration suites can drive signup → verify →
// save without depending on a real mail sender. Adapted from the teacher's
// sql/seed_data.go, which seeded growth/habit fixtures for its own domain.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const (
	host     = "localhost"
	port     = 5434
	user     = "chatkit"
	password = "chatkit123"
	dbname   = "chatkit"
)

// fixedVerificationToken is the token spec.md's seed scenario consumes
// directly, bypassing the mail sender.
const fixedVerificationToken = "integration-test-verification-token-67890"

const fixtureEmail = "test@integration.local"

var fixtureUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type DB struct {
	*sql.DB
}

func main() {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	err = db.Ping()
	if err != nil {
		log.Fatal("Cannot connect to database:", err)
	}

	fmt.Println("Successfully connected to database!")

	database := &DB{db}

	err = database.SeedData()
	if err != nil {
		log.Fatal("Error seeding data:", err)
	}

	fmt.Println("Data seeded successfully!")
}

// SeedData plants exactly the fixtures the integration scenarios in spec.md
// §8 depend on: one unverified user and its still-valid verification token.
// It is idempotent, safe to run against an already-seeded database.
func (db *DB) SeedData() error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			tx.Commit()
		}
	}()

	now := time.Now().UTC()

	_, err = tx.Exec(`
		INSERT INTO users (id, email, verified, tier, created_at)
		VALUES ($1, $2, FALSE, 'lightweight', $3)
		ON CONFLICT (email) DO NOTHING`,
		fixtureUserID, fixtureEmail, now)
	if err != nil {
		return fmt.Errorf("error inserting fixture user: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO verification_tokens (token, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET expires_at = EXCLUDED.expires_at, consumed_at = NULL`,
		fixedVerificationToken, fixtureEmail, now.Add(10*time.Minute), now)
	if err != nil {
		return fmt.Errorf("error inserting fixture verification token: %w", err)
	}

	fmt.Println("Seeded data:")
	fmt.Println("- 1 unverified user")
	fmt.Println("- 1 verification token")

	return nil
}
