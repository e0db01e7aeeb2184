package route

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

// paramID parses a numeric path parameter. It writes a 400 response and
// returns false when the parameter is not a positive integer.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// currentUser resolves the authenticated caller from the token claims.
func (s *Server) currentUser(c *gin.Context) (*model.User, bool) {
	userUUID := c.GetString("userUUID")
	user, err := s.store.UserRepo().GetUserByUUID(c.Request.Context(), userUUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		return nil, false
	}
	if user == nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown or inactive user"})
		return nil, false
	}
	return user, true
}

// ListFiles returns the files in a folder, most recent first.
func (s *Server) ListFiles(c *gin.Context) {
	folderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	files, err := s.store.FileRepo().ListFiles(c.Request.Context(), folderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files"})
		return
	}
	c.JSON(http.StatusOK, files)
}

type CreateFileRequest struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	UUID        string `json:"uuid" binding:"required"`
	Filename    string `json:"filename"`
	Extension   string `json:"extension"`
	DataType    string `json:"data_type"`
	FolderID    uint   `json:"folder_id" binding:"required"`
}

// CreateFile registers an uploaded file and derives its metadata from
// disk. The upload itself must already sit at the derived path.
func (s *Server) CreateFile(c *gin.Context) {
	var req CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	file, err := s.store.FileRepo().CreateFile(c.Request.Context(), model.File{
		DisplayName: req.DisplayName,
		Description: req.Description,
		UUID:        req.UUID,
		Filename:    req.Filename,
		Extension:   req.Extension,
		DataType:    req.DataType,
		UserID:      user.ID,
		FolderID:    &req.FolderID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create file"})
		return
	}
	c.JSON(http.StatusCreated, file)
}

// GetFile returns a file by ID, or 404 when it does not exist.
func (s *Server) GetFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := s.store.FileRepo().GetFile(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get file"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.JSON(http.StatusOK, file)
}

// DeleteFile removes a file row and its on-disk content.
func (s *Server) DeleteFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.store.FileRepo().DeleteFile(c.Request.Context(), fileID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}
	c.Status(http.StatusNoContent)
}

type CreateFileSummaryRequest struct {
	Provider string `json:"provider" binding:"required"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt" binding:"required"`
}

// CreateFileSummary generates an LLM summary for a file using the
// requested provider and persists it.
func (s *Server) CreateFileSummary(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CreateFileSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := s.store.FileRepo().GetFile(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get file"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	provider, err := s.registry.Get(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := s.store.FileRepo().CreateFileSummary(c.Request.Context(), model.FileSummary{
		StatusShort:      "in_progress",
		LLMModelPrompt:   req.Prompt,
		LLMModelProvider: provider.Name(),
		LLMModelName:     req.Model,
		FileID:           file.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create file summary"})
		return
	}

	start := time.Now()
	text, err := provider.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		summary.StatusShort = "failed"
		summary.StatusDetail = err.Error()
	} else {
		summary.StatusShort = "complete"
		summary.Summary = text
	}
	summary.Runtime = time.Since(start).Seconds()

	stored, err := s.store.FileRepo().UpdateFileSummary(c.Request.Context(), summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update file summary"})
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// GetFileSummary returns a file summary by ID, or 404 when absent.
func (s *Server) GetFileSummary(c *gin.Context) {
	summaryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	summary, err := s.store.FileRepo().GetFileSummary(c.Request.Context(), summaryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get file summary"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File summary not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type CreateFolderRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Path        string `json:"path" binding:"required"`
}

// CreateFolder registers a folder on the shared evidence filesystem.
func (s *Server) CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	folder, err := s.store.FolderRepo().CreateFolder(c.Request.Context(), model.Folder{
		DisplayName: req.DisplayName,
		Path:        req.Path,
		UserID:      user.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// ListFolders returns the folders owned by the caller.
func (s *Server) ListFolders(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	folders, err := s.store.FolderRepo().ListFolders(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list folders"})
		return
	}
	c.JSON(http.StatusOK, folders)
}

// GetFolder returns a folder by ID, or 404 when absent.
func (s *Server) GetFolder(c *gin.Context) {
	folderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	folder, err := s.store.FolderRepo().GetFolder(c.Request.Context(), folderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get folder"})
		return
	}
	if folder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	c.JSON(http.StatusOK, folder)
}
