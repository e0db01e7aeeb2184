package gormimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

var (
	userOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_repository_operations_total",
			Help: "The total number of user repository operations",
		},
		[]string{"operation", "status"},
	)
	userLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_repository_operation_duration_seconds",
			Help:    "Duration of user repository operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// UserRepo implements the UserRepo interface using GORM for database
// operations.
type UserRepo struct {
	db *gorm.DB
}

// CreateUser persists a new user and enrolls it in the system-wide
// "Everyone" group. The group is created lazily on first use behind a
// unique index on its name, so concurrent first-time creation ends with
// exactly one group row.
func (s *UserRepo) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("create"))
	defer timer.ObserveDuration()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: username %q", interfaces.ErrAlreadyExists, user.Username)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		group, err := ensureEveryoneGroup(tx)
		if err != nil {
			return err
		}

		if err := tx.Model(&user).Association("Groups").Append(group); err != nil {
			return fmt.Errorf("failed to add user to %q group: %w", model.EveryoneGroupName, err)
		}
		return nil
	})
	if err != nil {
		userOperations.WithLabelValues("create", "error").Inc()
		return model.User{}, err
	}

	userOperations.WithLabelValues("create", "success").Inc()
	return user, nil
}

// ensureEveryoneGroup looks up or creates the "Everyone" group. A
// duplicate-key error means another transaction created it first, in
// which case the existing row is fetched.
func ensureEveryoneGroup(tx *gorm.DB) (*model.Group, error) {
	var group model.Group
	err := tx.Where(model.Group{Name: model.EveryoneGroupName}).FirstOrCreate(&group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = tx.Where(model.Group{Name: model.EveryoneGroupName}).First(&group).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ensure %q group: %w", model.EveryoneGroupName, err)
	}
	return &group, nil
}

// GetUser retrieves a user by ID with group membership preloaded.
// Absence is not an error: it returns (nil, nil) when no user exists.
func (s *UserRepo) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	return s.getUserBy(ctx, "get", "id = ?", userID)
}

// GetUserByUsername retrieves a user by username. Returns (nil, nil) when absent.
func (s *UserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserBy(ctx, "get_by_username", "username = ?", username)
}

// GetUserByUUID retrieves a user by UUID. Returns (nil, nil) when absent.
func (s *UserRepo) GetUserByUUID(ctx context.Context, uuid string) (*model.User, error) {
	return s.getUserBy(ctx, "get_by_uuid", "uuid = ?", uuid)
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (s *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserBy(ctx, "get_by_email", "email = ?", email)
}

func (s *UserRepo) getUserBy(ctx context.Context, operation, query string, arg interface{}) (*model.User, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues(operation))
	defer timer.ObserveDuration()

	var user model.User
	if err := s.db.WithContext(ctx).Preload("Groups").Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			userOperations.WithLabelValues(operation, "success").Inc()
			return nil, nil
		}
		userOperations.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	userOperations.WithLabelValues(operation, "success").Inc()
	return &user, nil
}

// ListUsers retrieves all users.
func (s *UserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("list"))
	defer timer.ObserveDuration()

	var users []model.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		userOperations.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	userOperations.WithLabelValues("list", "success").Inc()
	return users, nil
}

// SearchUsers returns users whose display name, username or email
// contains the query, matched case-insensitively.
func (s *UserRepo) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("search"))
	defer timer.ObserveDuration()

	pattern := "%" + strings.ToLower(query) + "%"

	var users []model.User
	if err := s.db.WithContext(ctx).
		Where("lower(display_name) LIKE ? OR lower(username) LIKE ? OR lower(email) LIKE ?", pattern, pattern, pattern).
		Find(&users).Error; err != nil {
		userOperations.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	userOperations.WithLabelValues("search", "success").Inc()
	return users, nil
}

// ListUserAPIKeys retrieves all API keys belonging to a user.
func (s *UserRepo) ListUserAPIKeys(ctx context.Context, userID uint) ([]model.UserApiKey, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("list_api_keys"))
	defer timer.ObserveDuration()

	var keys []model.UserApiKey
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&keys).Error; err != nil {
		userOperations.WithLabelValues("list_api_keys", "error").Inc()
		return nil, fmt.Errorf("failed to retrieve api keys: %w", err)
	}
	userOperations.WithLabelValues("list_api_keys", "success").Inc()
	return keys, nil
}

// CreateUserAPIKey persists a new API key record.
func (s *UserRepo) CreateUserAPIKey(ctx context.Context, key model.UserApiKey) (model.UserApiKey, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("create_api_key"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).Create(&key).Error; err != nil {
		userOperations.WithLabelValues("create_api_key", "error").Inc()
		return model.UserApiKey{}, fmt.Errorf("failed to create api key: %w", err)
	}
	userOperations.WithLabelValues("create_api_key", "success").Inc()
	return key, nil
}

// DeleteUserAPIKey removes an API key scoped to its owning user. The
// delete filters on both the key ID and the owner ID, so a key ID
// belonging to a different user is a no-op rather than a cross-user
// deletion.
func (s *UserRepo) DeleteUserAPIKey(ctx context.Context, keyID, userID uint) error {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("delete_api_key"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", keyID, userID).
		Delete(&model.UserApiKey{}).Error; err != nil {
		userOperations.WithLabelValues("delete_api_key", "error").Inc()
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	userOperations.WithLabelValues("delete_api_key", "success").Inc()
	return nil
}

// UserRoleExists reports whether a (user, folder, role) grant exists.
// The database uniqueness constraint is authoritative; this check is
// advisory for callers that want to avoid a constraint round trip.
func (s *UserRepo) UserRoleExists(ctx context.Context, userID uint, folderID *uint, role string) (bool, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("role_exists"))
	defer timer.ObserveDuration()

	query := s.db.WithContext(ctx).Model(&model.UserRole{}).Where("user_id = ? AND role = ?", userID, role)
	if folderID != nil {
		query = query.Where("folder_id = ?", *folderID)
	} else {
		query = query.Where("folder_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		userOperations.WithLabelValues("role_exists", "error").Inc()
		return false, fmt.Errorf("failed to check user role: %w", err)
	}
	userOperations.WithLabelValues("role_exists", "success").Inc()
	return count > 0, nil
}

// CreateUserRole persists a role grant. A duplicate (user, folder,
// role) triple violates the composite unique index and is surfaced as
// ErrAlreadyExists, which closes the check-then-create race window.
func (s *UserRepo) CreateUserRole(ctx context.Context, role model.UserRole) (model.UserRole, error) {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("create_role"))
	defer timer.ObserveDuration()

	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		userOperations.WithLabelValues("create_role", "error").Inc()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.UserRole{}, fmt.Errorf("%w: role %q", interfaces.ErrAlreadyExists, role.Role)
		}
		return model.UserRole{}, fmt.Errorf("failed to create user role: %w", err)
	}
	userOperations.WithLabelValues("create_role", "success").Inc()
	return role, nil
}

// DeleteUserRole removes a role grant by ID. Deleting a nonexistent
// grant is an explicit ErrNotFound, not a silent no-op.
func (s *UserRepo) DeleteUserRole(ctx context.Context, roleID uint) error {
	timer := prometheus.NewTimer(userLatency.WithLabelValues("delete_role"))
	defer timer.ObserveDuration()

	result := s.db.WithContext(ctx).Delete(&model.UserRole{}, roleID)
	if result.Error != nil {
		userOperations.WithLabelValues("delete_role", "error").Inc()
		return fmt.Errorf("failed to delete user role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		userOperations.WithLabelValues("delete_role", "error").Inc()
		return fmt.Errorf("%w: user role %d", interfaces.ErrNotFound, roleID)
	}
	userOperations.WithLabelValues("delete_role", "success").Inc()
	return nil
}

// NewUserRepo creates and returns a new instance of UserRepo.
func NewUserRepo(db *gorm.DB) interfaces.UserRepo {
	return &UserRepo{db: db}
}
