package gormimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

var (
	folderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folder_repository_operations_total",
			Help: "The total number of folder repository operations",
		},
		[]string{"operation", "status"},
	)
)

// FolderRepo implements the FolderRepo interface using GORM for
// database operations.
type FolderRepo struct {
	db *gorm.DB
}

// CreateFolder persists a new folder.
func (s *FolderRepo) CreateFolder(ctx context.Context, folder model.Folder) (model.Folder, error) {
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		folderOperations.WithLabelValues("create", "error").Inc()
		return model.Folder{}, fmt.Errorf("failed to create folder: %w", err)
	}
	folderOperations.WithLabelValues("create", "success").Inc()
	return folder, nil
}

// GetFolder retrieves a folder by its ID. Absence is not an error: it
// returns (nil, nil) when no folder exists.
func (s *FolderRepo) GetFolder(ctx context.Context, folderID uint) (*model.Folder, error) {
	var folder model.Folder
	if err := s.db.WithContext(ctx).First(&folder, folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			folderOperations.WithLabelValues("get", "success").Inc()
			return nil, nil
		}
		folderOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve folder by ID: %w", err)
	}
	folderOperations.WithLabelValues("get", "success").Inc()
	return &folder, nil
}

// ListFolders retrieves all folders owned by a user.
func (s *FolderRepo) ListFolders(ctx context.Context, userID uint) ([]model.Folder, error) {
	var folders []model.Folder
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&folders).Error; err != nil {
		folderOperations.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve folders: %w", err)
	}
	folderOperations.WithLabelValues("list", "success").Inc()
	return folders, nil
}

// NewFolderRepo creates and returns a new instance of FolderRepo.
func NewFolderRepo(db *gorm.DB) interfaces.FolderRepo {
	return &FolderRepo{db: db}
}
