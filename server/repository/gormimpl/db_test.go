package gormimpl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"casevault/server/repository/model"
)

// setupTestDB opens a throwaway SQLite database with the full schema
// migrated, mirroring what the factory does against Postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.UserRole{},
		&model.UserApiKey{},
		&model.Folder{},
		&model.File{},
		&model.FileSummary{},
		&model.Workflow{},
		&model.WorkflowTemplate{},
		&model.Task{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) model.User {
	t.Helper()

	user := model.User{
		DisplayName: username,
		Username:    username,
		Email:       username + "@example.com",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedFolder(t *testing.T, db *gorm.DB, userID uint, path string) model.Folder {
	t.Helper()

	folder := model.Folder{
		DisplayName: "evidence",
		Path:        path,
		UserID:      userID,
	}
	require.NoError(t, db.Create(&folder).Error)
	return folder
}

func uintPtr(v uint) *uint        { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }
