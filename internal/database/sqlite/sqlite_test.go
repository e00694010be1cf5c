package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jobmatch/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SELECT ?1, ?2 WHERE a = ?10", Rebind("SELECT $1, $2 WHERE a = $10"))
	assert.Equal(t, "SELECT 1", Rebind("SELECT 1"))
}

func TestDB_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "rt.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", db.Driver())
	require.NoError(t, db.Ping(ctx))

	_, err = db.Exec(ctx, `CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE, seen_at TIMESTAMP, parent TEXT REFERENCES items (id))`)
	require.NoError(t, err)

	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC().Truncate(time.Microsecond)
	n, err := db.Exec(ctx, `INSERT INTO items (id, name, seen_at) VALUES ($1, $2, $3)`, id, "alpha", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var gotID uuid.UUID
	var name string
	var seen time.Time
	require.NoError(t, db.QueryRow(ctx, `SELECT id, name, seen_at FROM items WHERE name = $1`, "alpha").Scan(&gotID, &name, &seen))
	assert.Equal(t, id, gotID)
	assert.True(t, now.Equal(seen), "got %v want %v", seen, now)

	_, err = db.Exec(ctx, `INSERT INTO items (id, name) VALUES ($1, $2)`, uuid.Must(uuid.NewV7()), "alpha")
	assert.True(t, errors.Is(err, database.ErrUniqueViolation), "got %v", err)

	_, err = db.Exec(ctx, `INSERT INTO items (id, name, parent) VALUES ($1, $2, $3)`, uuid.Must(uuid.NewV7()), "beta", "nope")
	assert.True(t, errors.Is(err, database.ErrForeignKeyViolation), "got %v", err)

	err = db.QueryRow(ctx, `SELECT name FROM items WHERE name = $1`, "zzz").Scan(&name)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDB_Tx(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(ctx, `CREATE TABLE counters (k TEXT PRIMARY KEY, v INTEGER NOT NULL)`)
	require.NoError(t, err)

	err = database.WithTx(ctx, db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO counters (k, v) VALUES ($1, $2)`, "a", 1)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = database.WithTx(ctx, db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE counters SET v = $1 WHERE k = $2`, 99, "a"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var v int
	require.NoError(t, db.QueryRow(ctx, `SELECT v FROM counters WHERE k = $1`, "a").Scan(&v))
	assert.Equal(t, 1, v)
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), " ")
	require.Error(t, err)
}
