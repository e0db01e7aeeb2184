package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EveryoneGroupName is the system-wide group every user is enrolled in.
const EveryoneGroupName = "Everyone"

// User represents an account in the system. Robot accounts are used by
// workers and authenticate with API keys instead of OIDC.
type User struct {
	gorm.Model
	DisplayName           string `json:"display_name" gorm:"type:text;index"`
	Username              string `json:"username" gorm:"type:varchar(255);uniqueIndex;not null"`
	Email                 string `json:"email" gorm:"type:text;index"`
	PasswordHash          string `json:"-" gorm:"type:text"`
	PasswordHashAlgorithm string `json:"-" gorm:"type:varchar(64)"`
	AuthMethod            string `json:"auth_method" gorm:"type:varchar(64)"`
	ProfilePictureURL     string `json:"profile_picture_url" gorm:"type:text"`
	UUID                  string `json:"uuid" gorm:"type:varchar(45);index;not null"`
	IsAdmin               bool   `json:"is_admin"`
	IsActive              bool   `json:"is_active" gorm:"default:true"`
	IsRobot               bool   `json:"is_robot"`
	// Relationships
	Groups []Group `json:"groups,omitempty" gorm:"many2many:user_groups;"`
}

// TableName returns the custom table name for the User model.
func (*User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID before the user is created.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.UUID == "" {
		u.UUID = uuid.New().String()
	}
	return nil
}

// Group represents a named collection of users. Group names are unique
// so singleton groups like "Everyone" cannot be duplicated under
// concurrent creation.
type Group struct {
	gorm.Model
	Name        string `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	// Relationships
	Users []User `json:"users,omitempty" gorm:"many2many:user_groups;"`
}

// TableName returns the custom table name for the Group model.
func (*Group) TableName() string {
	return "groups"
}

// UserRole binds a user to a folder or file with a named permission
// level. The composite unique index turns duplicate grants into a
// constraint violation instead of a check-then-act race.
type UserRole struct {
	gorm.Model
	Role     string `json:"role" gorm:"type:varchar(64);not null;uniqueIndex:idx_user_folder_role"`
	UserID   uint   `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_folder_role"`
	FolderID *uint  `json:"folder_id" gorm:"index;uniqueIndex:idx_user_folder_role"`
	FileID   *uint  `json:"file_id" gorm:"index"`
}

// TableName returns the custom table name for the UserRole model.
func (*UserRole) TableName() string {
	return "user_roles"
}

// UserApiKey binds a token identifier and expiry to a user. The token
// itself is never stored, only its JTI.
type UserApiKey struct {
	gorm.Model
	DisplayName string    `json:"display_name" gorm:"type:text"`
	Description string    `json:"description" gorm:"type:text"`
	TokenJTI    string    `json:"token_jti" gorm:"type:varchar(64);index;not null"`
	TokenExp    time.Time `json:"token_exp" gorm:"not null"`
	// Relationships
	UserID uint `json:"user_id" gorm:"not null;index"`
}

// TableName returns the custom table name for the UserApiKey model.
func (*UserApiKey) TableName() string {
	return "user_api_keys"
}
