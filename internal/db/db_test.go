package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdrill/internal/db"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"file:test.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		db.DSN("file:test.db"))
	assert.Equal(t,
		"file:test.db?mode=rwc&_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		db.DSN("file:test.db?mode=rwc"))
}

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flashdrill.db")

	first, err := db.Open(ctx, path)
	require.NoError(t, err)
	_, err = first.ExecContext(ctx, `INSERT INTO card_groups (name) VALUES ('Default')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_groups`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_CascadesCardDeletes(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, filepath.Join(t.TempDir(), "cascade.db"))
	require.NoError(t, err)
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `INSERT INTO card_groups (name) VALUES ('g')`)
	require.NoError(t, err)
	groupID, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `INSERT INTO cards (group_id, position, question, answer) VALUES (?, 0, 'q', 'a')`, groupID)
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, `DELETE FROM card_groups WHERE id = ?`, groupID)
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n))
	assert.Zero(t, n)
}
