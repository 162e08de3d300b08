package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantry/migrations"
)

func TestUpFilesSortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_users.up.sql":     {Data: []byte("select 1")},
		"001_tenants.up.sql":   {Data: []byte("select 1")},
		"001_tenants.down.sql": {Data: []byte("select 1")},
		"README.md":            {Data: []byte("docs")},
	}

	files, err := UpFiles(fsys)

	require.NoError(t, err)
	assert.Equal(t, []string{"001_tenants.up.sql", "002_users.up.sql"}, files)
}

func TestEmbeddedMigrationsArePresent(t *testing.T) {
	files, err := UpFiles(migrations.FS)

	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

func TestOpenWithoutURLReturnsNilPool(t *testing.T) {
	pool, err := Open(t.Context(), DefaultConfig(""))

	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.Error(t, pool.Check(t.Context()))
	assert.NoError(t, pool.Close())
}

func TestOpenRejectsMalformedURL(t *testing.T) {
	pool, err := Open(t.Context(), DefaultConfig("postgres://localhost:notaport/tenantry"))

	require.ErrorContains(t, err, "parse database url")
	assert.Nil(t, pool)
}
