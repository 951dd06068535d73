package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "two statements",
			sql:  "CREATE TABLE a (id TEXT);\nCREATE TABLE b (id TEXT);",
			want: []string{"CREATE TABLE a (id TEXT)", "CREATE TABLE b (id TEXT)"},
		},
		{
			name: "semicolon inside string literal",
			sql:  "INSERT INTO t VALUES ('a;b');SELECT 1",
			want: []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name: "escaped quote does not close string",
			sql:  "INSERT INTO t VALUES ('it''s;fine');",
			want: []string{"INSERT INTO t VALUES ('it''s;fine')"},
		},
		{
			name: "trailing statement without semicolon",
			sql:  "SELECT 1",
			want: []string{"SELECT 1"},
		},
		{
			name: "empty input",
			sql:  "  \n ;; \n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, splitStatements(tt.sql))
		})
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath, migrations)
	require.NoError(t, err)

	var applied int
	require.NoError(t, db.Conn.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations",
	).Scan(&applied))
	assert.Greater(t, applied, 0)
	require.NoError(t, db.Close())

	// Aynı dosyayı ikinci kez açmak migration'ları TEKRAR çalıştırmamalı
	db2, err := New(dbPath, migrations)
	require.NoError(t, err)
	defer db2.Close()

	var appliedAgain int
	require.NoError(t, db2.Conn.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations",
	).Scan(&appliedAgain))
	assert.Equal(t, applied, appliedAgain)
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	t.Parallel()

	db := openScratchDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO scratch (v) VALUES ('ok')")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, scratchCount(t, db))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	db := openScratchDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO scratch (v) VALUES ('doomed')"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, scratchCount(t, db), "failed tx must leave no rows")
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	t.Parallel()

	db := openScratchDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO scratch (v) VALUES ('doomed')"); err != nil {
				return err
			}
			panic("handler exploded")
		})
	})

	assert.Equal(t, 0, scratchCount(t, db))
}

// openScratchDB, migration'sız tek tablolu bir test DB'si açar.
func openScratchDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "scratch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("CREATE TABLE scratch (v TEXT)")
	require.NoError(t, err)

	return db
}

func scratchCount(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM scratch").Scan(&n))
	return n
}
