package repositories

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

// GetRepository opens the database connection pool, runs migrations and
// returns the aggregate case store.
func GetRepository(url string, maxConns int) (interfaces.CaseStoreInterface, error) {
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	// Set the maximum number of open connections
	sqlDB.SetMaxOpenConns(maxConns)

	// Set the maximum number of idle connections
	sqlDB.SetMaxIdleConns(maxConns / 2)

	// Set the maximum lifetime of a connection
	sqlDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		// Map driver duplicate-key errors to gorm.ErrDuplicatedKey so the
		// repos can turn constraint violations into ErrAlreadyExists.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Perform database migrations
	if err = db.AutoMigrate(
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
	); err != nil {
		return nil, fmt.Errorf("failed to run auto migrations: %w", err)
	}

	// Create necessary indexes
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_files_folder_id_id", "CREATE INDEX IF NOT EXISTS idx_files_folder_id_id ON files (folder_id, id DESC)"},
		{"idx_tasks_workflow_id_id", "CREATE INDEX IF NOT EXISTS idx_tasks_workflow_id_id ON tasks (workflow_id, id ASC)"},
		{"idx_workflows_folder_id_id", "CREATE INDEX IF NOT EXISTS idx_workflows_folder_id_id ON workflows (folder_id, id DESC)"},
		{"idx_user_api_keys_user_id_jti", "CREATE INDEX IF NOT EXISTS idx_user_api_keys_user_id_jti ON user_api_keys (user_id, token_jti)"},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return nil, fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		slog.Info("Created index", "name", idx.name)
	}

	return NewPostgresRepo(db), nil
}
