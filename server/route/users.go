package route

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"casevault/pkg/auth"
	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

// ListUsers returns all user accounts.
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.store.UserRepo().ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// SearchUsers returns users whose display name, username or email
// contains the query string.
func (s *Server) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter q"})
		return
	}

	users, err := s.store.UserRepo().SearchUsers(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type CreateUserRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"is_admin"`
	IsRobot     bool   `json:"is_robot"`
}

// CreateUser provisions an account. Only admins may call it; robot
// accounts for workers are created this way too.
func (s *Server) CreateUser(c *gin.Context) {
	caller, ok := s.currentUser(c)
	if !ok {
		return
	}
	if !caller.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := model.User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		IsAdmin:     req.IsAdmin,
		IsActive:    true,
		IsRobot:     req.IsRobot,
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.PasswordHash = hash
		user.PasswordHashAlgorithm = "bcrypt"
	}

	created, err := s.store.UserRepo().CreateUser(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListUserAPIKeys returns the caller's API keys. The tokens themselves
// are never returned, only their metadata.
func (s *Server) ListUserAPIKeys(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	keys, err := s.store.UserRepo().ListUserAPIKeys(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list api keys"})
		return
	}
	c.JSON(http.StatusOK, keys)
}

type CreateUserAPIKeyRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Description string `json:"description"`
}

type CreateUserAPIKeyResponse struct {
	Key         model.UserApiKey `json:"key"`
	Token       string           `json:"token"`
	DisplayName string           `json:"display_name"`
}

// CreateUserAPIKey mints a signed API key for the caller and records
// its JTI and expiry. The token itself is returned exactly once.
func (s *Server) CreateUserAPIKey(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req CreateUserAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttl := time.Duration(s.cfg.Auth.APIKeyExpDays) * 24 * time.Hour
	token, jti, expiry, err := s.minter.MintAPIKey(user.UUID, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mint api key"})
		return
	}

	key, err := s.store.UserRepo().CreateUserAPIKey(c.Request.Context(), model.UserApiKey{
		DisplayName: req.DisplayName,
		Description: req.Description,
		TokenJTI:    jti,
		TokenExp:    expiry,
		UserID:      user.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store api key"})
		return
	}

	c.JSON(http.StatusCreated, CreateUserAPIKeyResponse{
		Key:         key,
		Token:       token,
		DisplayName: key.DisplayName,
	})
}

// DeleteUserAPIKey removes one of the caller's API keys. A key ID that
// belongs to another user is silently ignored.
func (s *Server) DeleteUserAPIKey(c *gin.Context) {
	keyID, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	if err := s.store.UserRepo().DeleteUserAPIKey(c.Request.Context(), keyID, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete api key"})
		return
	}
	c.Status(http.StatusNoContent)
}

type CreateUserRoleRequest struct {
	Role     string `json:"role" binding:"required"`
	UserID   uint   `json:"user_id" binding:"required"`
	FolderID *uint  `json:"folder_id"`
	FileID   *uint  `json:"file_id"`
}

// CreateUserRole grants a user a role on a folder or file. Duplicate
// grants answer 409.
func (s *Server) CreateUserRole(c *gin.Context) {
	var req CreateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := s.store.UserRepo().CreateUserRole(c.Request.Context(), model.UserRole{
		Role:     req.Role,
		UserID:   req.UserID,
		FolderID: req.FolderID,
		FileID:   req.FileID,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Role already granted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}
	c.JSON(http.StatusCreated, role)
}

// DeleteUserRole revokes a role grant by ID.
func (s *Server) DeleteUserRole(c *gin.Context) {
	roleID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.store.UserRepo().DeleteUserRole(c.Request.Context(), roleID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role"})
		return
	}
	c.Status(http.StatusNoContent)
}
