package interfaces

import (
	"context"

	"casevault/server/repository/model"
)

// UserRepo defines the interface for the user repository.
// It handles accounts, group membership, role grants and API keys.
type UserRepo interface {
	// CreateUser persists a new user and enrolls it in the system-wide
	// "Everyone" group, creating that group on first use. Enrollment is
	// idempotent under concurrent first-time creation.
	CreateUser(ctx context.Context, user model.User) (model.User, error)

	// GetUser retrieves a user by ID. It returns (nil, nil) when absent.
	GetUser(ctx context.Context, userID uint) (*model.User, error)

	// GetUserByUsername retrieves a user by username. Returns (nil, nil) when absent.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// GetUserByUUID retrieves a user by UUID. Returns (nil, nil) when absent.
	GetUserByUUID(ctx context.Context, uuid string) (*model.User, error)

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when absent.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]model.User, error)

	// SearchUsers returns users whose display name, username or email
	// contains the query, matched case-insensitively.
	SearchUsers(ctx context.Context, query string) ([]model.User, error)

	// ListUserAPIKeys retrieves all API keys belonging to a user.
	ListUserAPIKeys(ctx context.Context, userID uint) ([]model.UserApiKey, error)

	// CreateUserAPIKey persists a new API key record.
	CreateUserAPIKey(ctx context.Context, key model.UserApiKey) (model.UserApiKey, error)

	// DeleteUserAPIKey removes an API key scoped to its owning user. A
	// key ID belonging to a different user is a no-op so one user cannot
	// revoke another user's keys.
	DeleteUserAPIKey(ctx context.Context, keyID, userID uint) error

	// UserRoleExists reports whether a (user, folder, role) grant exists.
	UserRoleExists(ctx context.Context, userID uint, folderID *uint, role string) (bool, error)

	// CreateUserRole persists a role grant. A duplicate (user, folder,
	// role) triple is rejected with ErrAlreadyExists by the database
	// uniqueness constraint.
	CreateUserRole(ctx context.Context, role model.UserRole) (model.UserRole, error)

	// DeleteUserRole removes a role grant by ID. It returns ErrNotFound
	// if the grant does not exist.
	DeleteUserRole(ctx context.Context, roleID uint) error
}
