package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

// repoCases runs the shared contract against both implementations.
func repoCases(t *testing.T) map[string]func(t *testing.T) Repository {
	t.Helper()
	return map[string]func(t *testing.T) Repository{
		"sqlite": func(t *testing.T) Repository { return NewSQLiteRepository(setupDB(t)) },
		"memory": func(t *testing.T) Repository { return NewMemory() },
	}
}

func TestRepository_SetThenGet(t *testing.T) {
	for name, mk := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()

			require.NoError(t, r.Set(ctx, "jwt_token", []byte("a.b.c")))

			v, err := r.Get(ctx, "jwt_token")
			require.NoError(t, err)
			require.Equal(t, []byte("a.b.c"), v)
		})
	}
}

func TestRepository_GetMissing_ReturnsNilNil(t *testing.T) {
	for name, mk := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			v, err := mk(t).Get(context.Background(), "absent")
			require.NoError(t, err)
			require.Nil(t, v)
		})
	}
}

func TestRepository_SetOverwrites(t *testing.T) {
	for name, mk := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()

			require.NoError(t, r.Set(ctx, "k", []byte("old")))
			require.NoError(t, r.Set(ctx, "k", []byte("new")))

			v, err := r.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, []byte("new"), v)
		})
	}
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	for name, mk := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()

			require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
			require.NoError(t, r.Delete(ctx, "x"))

			v, err := r.Get(ctx, "x")
			require.NoError(t, err)
			require.Nil(t, v)

			require.NoError(t, r.Delete(ctx, "x"))
		})
	}
}

func TestRepository_ListAndClear(t *testing.T) {
	for name, mk := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()

			require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
			require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

			m, err := r.List(ctx)
			require.NoError(t, err)
			assert.Len(t, m, 2)
			assert.Equal(t, []byte{0xAA}, m["a"])
			assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])

			require.NoError(t, r.Clear(ctx))
			require.NoError(t, r.Clear(ctx))

			m, err = r.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, m)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	in := []byte("token")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("token"), out)

	out[0] = 'Y'
	again, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("token"), again)
}

func TestSQLite_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, "failed to set metadata[k]")

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, "failed to delete metadata[k]")

	err = r.Clear(ctx)
	require.ErrorContains(t, err, "failed to clear metadata")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}
