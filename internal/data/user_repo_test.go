package data

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
	apperrors "github.com/progresshq/progress-api/internal/errors"
	"github.com/progresshq/progress-api/internal/testutil"
)

func newTestUser(email string, roles ...domainauth.Role) *model.User {
	if len(roles) == 0 {
		roles = []domainauth.Role{domainauth.RoleCollaborator}
	}
	return &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfortestingonly",
		Active:       true,
		Roles:        roles,
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	user := newTestUser("create@example.com", domainauth.RoleAdmin, domainauth.RoleManager)
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.ElementsMatch(t, []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleManager}, got.Roles)

	byEmail, err := repo.GetByEmail(ctx, "CREATE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("dup@example.com")))

	err := repo.Create(ctx, newTestUser("DUP@example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetNotFound(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_Update(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	user := newTestUser("update@example.com")
	require.NoError(t, repo.Create(ctx, user))

	user.Name = "Renamed"
	user.Active = false
	user.Roles = []domainauth.Role{domainauth.RoleManager}
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.Active)
	assert.Equal(t, []domainauth.Role{domainauth.RoleManager}, got.Roles)
}

func TestUserRepo_UpdateMissing(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)

	ghost := newTestUser("ghost@example.com")
	ghost.ID = 999999
	assert.ErrorIs(t, repo.Update(context.Background(), ghost), ErrUserNotFound)
}

func TestUserRepo_Delete(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	user := newTestUser("delete@example.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrUserNotFound)

	_, err := repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_MapWriteErr(t *testing.T) {
	repo := &UserRepo{}

	assert.NoError(t, repo.mapWriteErr(nil, false))

	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
	assert.ErrorIs(t, repo.mapWriteErr(fmt.Errorf("insert user: %w", unique), false), ErrEmailExists)

	assert.ErrorIs(t, repo.mapWriteErr(pgx.ErrNoRows, true), ErrUserNotFound)

	// Other constraint failures go through the shared taxonomy.
	notNull := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "name"}
	assert.True(t, apperrors.IsValidation(repo.mapWriteErr(notNull, false)))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, repo.mapWriteErr(plain, false))
}

func TestUserRepo_List(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	for _, email := range []string{"l1@example.com", "l2@example.com", "l3@example.com"} {
		require.NoError(t, repo.Create(ctx, newTestUser(email)))
	}

	users, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotNil(t, u.Roles)
	}

	rest, err := repo.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
