package gormimpl

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

var (
	fileOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_repository_operations_total",
			Help: "The total number of file repository operations",
		},
		[]string{"operation", "status"},
	)
	fileLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "file_repository_operation_duration_seconds",
			Help:    "Duration of file repository operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// FileRepo implements the FileRepo interface using GORM for database
// operations and content sniffing for derived file metadata.
type FileRepo struct {
	db *gorm.DB
}

// ListFiles retrieves all files in a folder, ordered by descending
// identifier (most recent first).
func (s *FileRepo) ListFiles(ctx context.Context, folderID uint) ([]model.File, error) {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("list"))
	defer timer.ObserveDuration()

	var files []model.File
	if err := s.db.WithContext(ctx).Where("folder_id = ?", folderID).Order("id DESC").Find(&files).Error; err != nil {
		fileOperations.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve files: %w", err)
	}
	fileOperations.WithLabelValues("list", "success").Inc()
	return files, nil
}

// GetFile retrieves a file from the database by its ID. Absence is not
// an error: it returns (nil, nil) when no file exists.
func (s *FileRepo) GetFile(ctx context.Context, fileID uint) (*model.File, error) {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("get"))
	defer timer.ObserveDuration()

	var file model.File
	if err := s.db.WithContext(ctx).Preload("Folder").First(&file, fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fileOperations.WithLabelValues("get", "success").Inc()
			return nil, nil
		}
		fileOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve file by ID: %w", err)
	}
	fileOperations.WithLabelValues("get", "success").Inc()
	return &file, nil
}

// CreateFile persists a new file after deriving its on-disk metadata.
// The owning folder is resolved, the path derived from the folder path,
// UUID and extension, and size, hashes and MIME metadata are read from
// the file content. If the file cannot be inspected the whole create is
// rolled back so no partial row is persisted.
func (s *FileRepo) CreateFile(ctx context.Context, file model.File) (model.File, error) {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("create"))
	defer timer.ObserveDuration()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if file.FolderID == nil {
			return fmt.Errorf("file requires a folder")
		}
		var folder model.Folder
		if err := tx.First(&folder, *file.FolderID).Error; err != nil {
			return fmt.Errorf("failed to resolve folder: %w", err)
		}

		// The path is derived before the row exists, so the UUID has to
		// be assigned here rather than in the BeforeCreate hook.
		if file.UUID == "" {
			file.UUID = uuid.New().String()
		}
		file.Folder = &folder
		path := file.Path()

		if err := inspectFile(path, &file); err != nil {
			return err
		}

		if err := tx.Create(&file).Error; err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		return nil
	})
	if err != nil {
		fileOperations.WithLabelValues("create", "error").Inc()
		return model.File{}, err
	}

	fileOperations.WithLabelValues("create", "success").Inc()
	return file, nil
}

// inspectFile fills the derived metadata columns from the file on disk.
func inspectFile(path string, file *model.File) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	file.Filesize = info.Size()

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to detect file type of %s: %w", path, err)
	}
	file.MagicMime = mtype.String()
	desc := strings.TrimPrefix(mtype.Extension(), ".")
	if desc == "" {
		desc = "binary"
	}
	file.MagicText = fmt.Sprintf("%s data, %s", desc, mtype.String())

	md5Hash, sha1Hash, sha256Hash, err := hashFile(path)
	if err != nil {
		return fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	file.HashMD5 = md5Hash
	file.HashSHA1 = sha1Hash
	file.HashSHA256 = sha256Hash
	return nil
}

// hashFile computes the MD5, SHA1 and SHA256 digests in a single read.
func hashFile(path string) (string, string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", "", err
	}
	defer f.Close()

	var md5Hash, sha1Hash, sha256Hash hash.Hash = md5.New(), sha1.New(), sha256.New()
	if _, err := io.Copy(io.MultiWriter(md5Hash, sha1Hash, sha256Hash), f); err != nil {
		return "", "", "", err
	}
	return hex.EncodeToString(md5Hash.Sum(nil)),
		hex.EncodeToString(sha1Hash.Sum(nil)),
		hex.EncodeToString(sha256Hash.Sum(nil)), nil
}

// DeleteFile removes a file row and the backing file on disk. Deleting
// a nonexistent file is an explicit ErrNotFound, not a silent no-op.
func (s *FileRepo) DeleteFile(ctx context.Context, fileID uint) error {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("delete"))
	defer timer.ObserveDuration()

	var file model.File
	if err := s.db.WithContext(ctx).Preload("Folder").First(&file, fileID).Error; err != nil {
		fileOperations.WithLabelValues("delete", "error").Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: file %d", interfaces.ErrNotFound, fileID)
		}
		return fmt.Errorf("failed to load file for deletion: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&file).Error; err != nil {
		fileOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete file: %w", err)
	}

	// Remove the backing file once the row is gone. A missing file on
	// disk does not fail the delete.
	if path := file.Path(); path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fileOperations.WithLabelValues("delete", "error").Inc()
			return fmt.Errorf("failed to remove file from disk: %w", err)
		}
	}

	fileOperations.WithLabelValues("delete", "success").Inc()
	return nil
}

// GetFileSummary retrieves a file summary by its ID. It returns
// (nil, nil) when no summary exists.
func (s *FileRepo) GetFileSummary(ctx context.Context, summaryID uint) (*model.FileSummary, error) {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("get_summary"))
	defer timer.ObserveDuration()

	var summary model.FileSummary
	if err := s.db.WithContext(ctx).First(&summary, summaryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fileOperations.WithLabelValues("get_summary", "success").Inc()
			return nil, nil
		}
		fileOperations.WithLabelValues("get_summary", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve file summary by ID: %w", err)
	}
	fileOperations.WithLabelValues("get_summary", "success").Inc()
	return &summary, nil
}

// CreateFileSummary persists a new LLM-generated summary for a file.
func (s *FileRepo) CreateFileSummary(ctx context.Context, summary model.FileSummary) (model.FileSummary, error) {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("create_summary"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).Create(&summary).Error; err != nil {
		fileOperations.WithLabelValues("create_summary", "error").Inc()
		return model.FileSummary{}, fmt.Errorf("failed to create file summary: %w", err)
	}
	fileOperations.WithLabelValues("create_summary", "success").Inc()
	return summary, nil
}

// UpdateFileSummary saves the mutable fields of an existing summary and
// returns the stored row.
func (s *FileRepo) UpdateFileSummary(ctx context.Context, summary model.FileSummary) (model.FileSummary, error) {
	timer := prometheus.NewTimer(fileLatency.WithLabelValues("update_summary"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).Save(&summary).Error; err != nil {
		fileOperations.WithLabelValues("update_summary", "error").Inc()
		return model.FileSummary{}, fmt.Errorf("failed to update file summary: %w", err)
	}

	var stored model.FileSummary
	if err := s.db.WithContext(ctx).First(&stored, summary.ID).Error; err != nil {
		fileOperations.WithLabelValues("update_summary", "error").Inc()
		return model.FileSummary{}, fmt.Errorf("failed to reload file summary: %w", err)
	}
	fileOperations.WithLabelValues("update_summary", "success").Inc()
	return stored, nil
}

// NewFileRepo creates and returns a new instance of FileRepo.
func NewFileRepo(db *gorm.DB) interfaces.FileRepo {
	return &FileRepo{db: db}
}
