package profile

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id BIGINT PRIMARY KEY, name TEXT NOT NULL, city TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now());
CREATE TABLE IF NOT EXISTS profile_history (
    user_id BIGINT NOT NULL REFERENCES profiles (user_id) ON DELETE CASCADE,
    city TEXT NOT NULL, seen_at TEXT NOT NULL, PRIMARY KEY (user_id, city));`

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("env DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.MustExec(testSchema)
	db.MustExec(`TRUNCATE profile_history, profiles`)
	return db
}

func TestPostgresStoreFirstSeenSemantics(t *testing.T) {
	store := NewPostgresStore(openTestDB(t))
	ctx := context.Background()

	ps := Profiles{}
	p, _ := ps.GetOrCreate(1, "Оля")
	p.SetCity("Київ", "01.01.2024, 10:00:00")
	require.NoError(t, store.Save(ctx, ps))

	// a stale writer with a different stamp must not overwrite the first one
	p.History["Київ"] = Visit{Time: "02.02.2024, 10:00:00"}
	p.Name = "Олена"
	require.NoError(t, store.Save(ctx, ps))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, got, int64(1))
	assert.Equal(t, "Олена", got[1].Name)
	assert.Equal(t, "01.01.2024, 10:00:00", got[1].History["Київ"].Time)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgresStoreSaveKeepsAbsentRows(t *testing.T) {
	store := NewPostgresStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Profiles{
		1: {Name: "Оля", City: "Київ", History: map[string]Visit{}},
		2: {Name: "Ігор", History: map[string]Visit{}},
	}))
	require.NoError(t, store.Save(ctx, Profiles{2: {Name: "Ігор", City: "Львів", History: map[string]Visit{}}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, got, int64(1))
	assert.Equal(t, "Київ", got[1].City)
	assert.Equal(t, "Львів", got[2].City)
}
