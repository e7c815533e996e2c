package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/db"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateFS(Embedded(), embeddedDir))
}

func TestCartItemsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_items.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CHECK (quantity > 0)",
		"PRIMARY KEY (user_id, product_id)",
		"DROP TABLE IF EXISTS cart_items",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestValidateFSRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateFS(os.DirFS(dir), ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateFSRejectsEmptyDir(t *testing.T) {
	require.Error(t, ValidateFS(os.DirFS(t.TempDir()), "."))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Coupon Audit!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_coupon_audit.sql"))
	require.NoError(t, ValidateFS(os.DirFS(dir), "."))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestRunAppliesMigrationsToSQLite(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		DSN:          "file:migrate_run?mode=memory&cache=shared",
		Driver:       config.DBDriverSQLite,
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		DB:  config.DBConfig{AutoMigrate: true},
	}
	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), client))
	assert.True(t, client.DB().Migrator().HasTable("cart_items"))

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	require.NoError(t, Run(ctx, sqlDB, config.DBDriverSQLite, "down"))
	assert.False(t, client.DB().Migrator().HasTable("cart_items"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, config.DBDriverSQLite, "20260301120000"))
	assert.True(t, client.DB().Migrator().HasTable("cart_items"))
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}, DB: config.DBConfig{AutoMigrate: true}}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), nil))
}
