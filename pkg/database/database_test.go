package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-inventory-mt/internal/model"
	"go-inventory-mt/pkg/config"
)

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, table := range []interface{}{&model.Company{}, &model.User{}, &model.Product{}, &model.PurchaseInfo{}, &model.SaleRecord{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inventory.db")
	db, err := Open(config.DBConfig{Driver: "sqlite", SQLitePath: path, LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.FileExists(t, path)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DBConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
