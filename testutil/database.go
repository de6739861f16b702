// Package testutil builds throwaway backends and requests for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/KOMKZ/yogan-vehicle-api/database"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"gorm.io/gorm"
)

// SetupSQLite opens a file-backed sqlite database under t.TempDir and migrates
// models. A file is used so every pooled connection sees the same data.
func SetupSQLite(t *testing.T, models ...interface{}) (*gorm.DB, *database.Manager) {
	t.Helper()
	m, err := database.NewManager(map[string]database.Config{
		"main": {
			Driver:       database.DriverSQLite,
			DSN:          filepath.Join(t.TempDir(), "test.db"),
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
	}, nil, logger.NewTestCtxLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	db := m.DB("main")
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db, m
}

// DBHelper wraps common assertions on table contents.
type DBHelper struct {
	DB *gorm.DB
}

func NewDBHelper(db *gorm.DB) *DBHelper {
	return &DBHelper{DB: db}
}

func (h *DBHelper) Count(table string) (int64, error) {
	var n int64
	err := h.DB.Table(table).Count(&n).Error
	return n, err
}

func (h *DBHelper) DeleteAll(table string) error {
	return h.DB.Exec("DELETE FROM " + table).Error
}

func (h *DBHelper) Seed(rows interface{}) error {
	return h.DB.Create(rows).Error
}
