package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darrenak403/clothingshop-be/migrations/postgres"
)

func TestParseMigrations_SortsAndIgnoresStrays(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_more.sql":  {Data: []byte("SELECT 2;")},
		"m/0001_init.sql":  {Data: []byte("SELECT 1;")},
		"m/README.md":      {Data: []byte("notes")},
		"m/sub/0003_x.sql": {Data: []byte("SELECT 3;")},
	}

	migs, err := NewMigrator(fsys, "m").ParseMigrations()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, 1, migs[0].Version)
	assert.Equal(t, "init", migs[0].Name)
	assert.Equal(t, 2, migs[1].Version)
	assert.Equal(t, "SELECT 2;", migs[1].SQL)
}

func TestParseMigrations_RejectsDuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1;")},
		"m/1_b.sql":    {Data: []byte("SELECT 1;")},
	}
	_, err := NewMigrator(fsys, "m").ParseMigrations()
	assert.Error(t, err)
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	migs, err := NewMigrator(postgres.FS, postgres.Dir).ParseMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, 1, migs[0].Version)
	assert.Contains(t, migs[0].SQL, "password_reset_attempt")
}
