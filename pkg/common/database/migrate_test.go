package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_create_users.sql",
		"migrations/00002_create_posts.sql",
	}, files)

	users, err := fs.ReadFile(migrations, "migrations/00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(users), "UNIQUE KEY uk_users_email (email)")
}

func TestMigrate_CallsGooseWithEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, migrationsDir, gotDir)
}

func TestMigrate_PropagatesError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := Migrate(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}
