package gormimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

// writeEvidenceFile puts content on disk where CreateFile expects to
// find it: {folder.path}/{uuid}.{extension}.
func writeEvidenceFile(t *testing.T, folderPath, fileUUID, extension, content string) {
	t.Helper()

	name := fileUUID
	if extension != "" {
		name = fileUUID + "." + extension
	}
	require.NoError(t, os.WriteFile(filepath.Join(folderPath, name), []byte(content), 0644))
}

func TestCreateFileDerivesMetadata(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	writeEvidenceFile(t, folder.Path, "aaaa-bbbb", "txt", "hello evidence")

	created, err := repo.CreateFile(context.Background(), model.File{
		DisplayName: "notes.txt",
		UUID:        "aaaa-bbbb",
		Filename:    "notes.txt",
		Extension:   "txt",
		UserID:      user.ID,
		FolderID:    uintPtr(folder.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len("hello evidence")), created.Filesize)
	assert.Contains(t, created.MagicMime, "text/plain")
	assert.NotEmpty(t, created.MagicText)
	assert.Len(t, created.HashMD5, 32)
	assert.Len(t, created.HashSHA1, 40)
	assert.Len(t, created.HashSHA256, 64)
	assert.Equal(t, model.DataTypeGeneric, created.DataType)
}

func TestCreateFileMissingOnDisk(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	_, err := repo.CreateFile(context.Background(), model.File{
		UUID:     "does-not-exist",
		UserID:   user.ID,
		FolderID: uintPtr(folder.ID),
	})
	require.Error(t, err)

	// No partial row survives a failed inspection.
	var count int64
	require.NoError(t, db.Model(&model.File{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListFilesMostRecentFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	var ids []uint
	for _, name := range []string{"a", "b", "c"} {
		writeEvidenceFile(t, folder.Path, name, "", name)
		created, err := repo.CreateFile(context.Background(), model.File{
			DisplayName: name,
			UUID:        name,
			UserID:      user.ID,
			FolderID:    uintPtr(folder.ID),
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	files, err := repo.ListFiles(context.Background(), folder.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)

	// Created in order a, b, c; listed as c, b, a.
	assert.Equal(t, ids[2], files[0].ID)
	assert.Equal(t, ids[1], files[1].ID)
	assert.Equal(t, ids[0], files[2].ID)
}

func TestGetFileAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepo(db)

	file, err := repo.GetFile(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestDeleteFile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	writeEvidenceFile(t, folder.Path, "doomed", "bin", "payload")
	created, err := repo.CreateFile(context.Background(), model.File{
		UUID:      "doomed",
		Extension: "bin",
		UserID:    user.ID,
		FolderID:  uintPtr(folder.ID),
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteFile(context.Background(), created.ID))

	// Row and on-disk file are both gone.
	file, err := repo.GetFile(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, file)
	_, statErr := os.Stat(filepath.Join(folder.Path, "doomed.bin"))
	assert.True(t, os.IsNotExist(statErr))

	// Deleting again is an explicit error, not a silent no-op.
	err = repo.DeleteFile(context.Background(), created.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestFileSummaryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	writeEvidenceFile(t, folder.Path, "summarized", "txt", "log content")
	file, err := repo.CreateFile(context.Background(), model.File{
		UUID:     "summarized",
		UserID:   user.ID,
		FolderID: uintPtr(folder.ID),
	})
	require.NoError(t, err)

	summary, err := repo.CreateFileSummary(context.Background(), model.FileSummary{
		StatusShort:      "pending",
		LLMModelProvider: "ollama",
		LLMModelName:     "gemma2",
		FileID:           file.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, summary.ID)

	summary.Summary = "An apache access log."
	summary.StatusShort = "complete"
	updated, err := repo.UpdateFileSummary(context.Background(), summary)
	require.NoError(t, err)
	assert.Equal(t, "An apache access log.", updated.Summary)
	assert.Equal(t, "complete", updated.StatusShort)

	missing, err := repo.GetFileSummary(context.Background(), summary.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
