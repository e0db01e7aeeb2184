package gormimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

func TestCreateUserEnrollsInEveryoneGroup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	first, err := repo.CreateUser(context.Background(), model.User{Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	second, err := repo.CreateUser(context.Background(), model.User{Username: "bob", DisplayName: "Bob"})
	require.NoError(t, err)

	// The group is created once and reused, never duplicated.
	var groupCount int64
	require.NoError(t, db.Model(&model.Group{}).Where("name = ?", model.EveryoneGroupName).Count(&groupCount).Error)
	assert.Equal(t, int64(1), groupCount)

	for _, id := range []uint{first.ID, second.ID} {
		user, err := repo.GetUser(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, user)
		require.Len(t, user.Groups, 1)
		assert.Equal(t, model.EveryoneGroupName, user.Groups[0].Name)
	}
}

func TestCreateUserAssignsUUID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	user, err := repo.CreateUser(context.Background(), model.User{Username: "carol"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UUID)

	byUUID, err := repo.GetUserByUUID(context.Background(), user.UUID)
	require.NoError(t, err)
	require.NotNil(t, byUUID)
	assert.Equal(t, user.ID, byUUID.ID)
}

func TestGetUserAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	user, err := repo.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = repo.GetUserByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSearchUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	users := []model.User{
		{Username: "dfraser", DisplayName: "Dana Fraser", Email: "dana@example.com"},
		{Username: "mholt", DisplayName: "Morgan Holt", Email: "morgan@example.com"},
		{Username: "franc", DisplayName: "Fran Castillo", Email: "fran@other.org"},
	}
	for _, u := range users {
		_, err := repo.CreateUser(context.Background(), u)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "matches display name case-insensitively",
			query: "DANA",
			want:  []string{"dfraser"},
		},
		{
			name:  "matches across username and display name",
			query: "fra",
			want:  []string{"dfraser", "franc"},
		},
		{
			name:  "matches email",
			query: "other.org",
			want:  []string{"franc"},
		},
		{
			name:  "no match",
			query: "zz",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchUsers(context.Background(), tt.query)
			require.NoError(t, err)

			var usernames []string
			for _, u := range got {
				usernames = append(usernames, u.Username)
			}
			assert.ElementsMatch(t, tt.want, usernames)
		})
	}
}

func TestUserRoleExistsAndCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	exists, err := repo.UserRoleExists(context.Background(), user.ID, uintPtr(folder.ID), "viewer")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.CreateUserRole(context.Background(), model.UserRole{
		Role:     "viewer",
		UserID:   user.ID,
		FolderID: uintPtr(folder.ID),
	})
	require.NoError(t, err)

	exists, err = repo.UserRoleExists(context.Background(), user.ID, uintPtr(folder.ID), "viewer")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateDuplicateUserRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	user := seedUser(t, db, "investigator")
	folder := seedFolder(t, db, user.ID, t.TempDir())

	role := model.UserRole{Role: "editor", UserID: user.ID, FolderID: uintPtr(folder.ID)}
	_, err := repo.CreateUserRole(context.Background(), role)
	require.NoError(t, err)

	// The unique index rejects the duplicate, no advisory check needed.
	_, err = repo.CreateUserRole(context.Background(), role)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)
}

func TestDeleteUserRoleNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	err := repo.DeleteUserRole(context.Background(), 42)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDeleteUserAPIKeyScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	key, err := repo.CreateUserAPIKey(context.Background(), model.UserApiKey{
		DisplayName: "ci key",
		TokenJTI:    "jti-1",
		TokenExp:    time.Now().Add(24 * time.Hour),
		UserID:      owner.ID,
	})
	require.NoError(t, err)

	// Another user deleting the key is a no-op; the key remains.
	require.NoError(t, repo.DeleteUserAPIKey(context.Background(), key.ID, other.ID))
	keys, err := repo.ListUserAPIKeys(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	// The owner can delete it.
	require.NoError(t, repo.DeleteUserAPIKey(context.Background(), key.ID, owner.ID))
	keys, err = repo.ListUserAPIKeys(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
