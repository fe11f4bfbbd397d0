package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdrill/internal/db"
	"github.com/vytor/flashdrill/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection is kept open so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), conn), "failed to apply migrations")
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertGroup creates a group directly and returns its id.
func InsertGroup(t *testing.T, conn *sql.DB, name string) int64 {
	t.Helper()
	res, err := conn.Exec(`INSERT INTO card_groups (name) VALUES (?)`, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Cards builds n unsaved cards with questions q1..qn and answers a1..an.
func Cards(n int) []models.Card {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{
			Question: "q" + strconv.Itoa(i+1),
			Answer:   "a" + strconv.Itoa(i+1),
		}
	}
	return cards
}
