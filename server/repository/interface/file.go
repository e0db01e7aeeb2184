package interfaces

import (
	"context"

	"casevault/server/repository/model"
)

// FileRepo defines the interface for the file repository.
// It handles evidence files and their LLM-generated summaries.
type FileRepo interface {
	// ListFiles retrieves all files in a folder, most recent first
	// (descending identifier order).
	ListFiles(ctx context.Context, folderID uint) ([]model.File, error)

	// GetFile retrieves a file by its ID. It returns (nil, nil) when no
	// file exists; absence is not an error for point lookups.
	GetFile(ctx context.Context, fileID uint) (*model.File, error)

	// CreateFile persists a new file. The owning folder is resolved, the
	// on-disk path derived from the folder path, file UUID and extension,
	// and size plus MIME metadata are sniffed from the file content. The
	// create fails as a whole if the on-disk file cannot be inspected.
	CreateFile(ctx context.Context, file model.File) (model.File, error)

	// DeleteFile removes a file row and the backing file on disk.
	// It returns ErrNotFound if the row does not exist.
	DeleteFile(ctx context.Context, fileID uint) error

	// GetFileSummary retrieves a file summary by its ID. It returns
	// (nil, nil) when no summary exists.
	GetFileSummary(ctx context.Context, summaryID uint) (*model.FileSummary, error)

	// CreateFileSummary persists a new LLM-generated summary for a file.
	CreateFileSummary(ctx context.Context, summary model.FileSummary) (model.FileSummary, error)

	// UpdateFileSummary saves the mutable fields of an existing summary
	// and returns the stored row.
	UpdateFileSummary(ctx context.Context, summary model.FileSummary) (model.FileSummary, error)
}

// FolderRepo defines the interface for the folder repository.
type FolderRepo interface {
	// CreateFolder persists a new folder.
	CreateFolder(ctx context.Context, folder model.Folder) (model.Folder, error)

	// GetFolder retrieves a folder by its ID. It returns (nil, nil) when
	// no folder exists.
	GetFolder(ctx context.Context, folderID uint) (*model.Folder, error)

	// ListFolders retrieves all folders owned by a user.
	ListFolders(ctx context.Context, userID uint) ([]model.Folder, error)
}
