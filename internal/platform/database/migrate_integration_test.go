//go:build integration

package database_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantry/internal/platform/database"
	"tenantry/migrations"
	"tenantry/pkg/testutil/containers"
)

func TestMigrateRecordsEveryVersionOnce(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	ctx := t.Context()

	// The container already migrated once; a second run must be a no-op.
	require.NoError(t, database.Migrate(ctx, pg.DB))

	files, err := database.UpFiles(migrations.FS)
	require.NoError(t, err)

	var count int
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, len(files), count)
}

func TestMigrateFSRollsBackFailedFile(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	ctx := t.Context()
	t.Cleanup(func() {
		_, _ = pg.Exec(ctx, `DROP TABLE IF EXISTS migrate_probe`)
		_, _ = pg.Exec(ctx, `DELETE FROM schema_migrations WHERE version LIKE '9%'`)
	})

	fsys := fstest.MapFS{
		"900_probe.up.sql":  {Data: []byte(`CREATE TABLE migrate_probe (id INT)`)},
		"901_broken.up.sql": {Data: []byte(`INSERT INTO migrate_probe VALUES (1); SELECT * FROM missing_table`)},
	}

	err := database.MigrateFS(ctx, pg.DB, fsys)
	require.ErrorContains(t, err, "901_broken.up.sql")

	var rows int
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM migrate_probe`).Scan(&rows))
	assert.Zero(t, rows)

	var versions []string
	r, err := pg.DB.QueryContext(ctx, `SELECT version FROM schema_migrations WHERE version LIKE '9%' ORDER BY version`)
	require.NoError(t, err)
	defer r.Close()
	for r.Next() {
		var v string
		require.NoError(t, r.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"900_probe"}, versions)
}
