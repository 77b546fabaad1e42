package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/progresshq/progress-api/internal/data"
	"github.com/progresshq/progress-api/internal/domain/model"
	apperrors "github.com/progresshq/progress-api/internal/errors"
	"github.com/progresshq/progress-api/internal/ports"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
}

// UserService orchestrates user CRUD with password hashing and role
// assignment.
type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	return &UserService{users: opts.Users, hasher: opts.Hasher}
}

// Create validates the request, hashes the password, and persists the
// user with its roles. New users start active.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	roles, err := model.ParseRoles(req.Roles)
	if err != nil {
		return nil, apperrors.ValidationField("roles", err.Error())
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		JobTitle:     req.JobTitle,
		Department:   req.Department,
		Active:       true,
		PasswordHash: hash,
		Roles:        roles,
	}
	if createErr := s.users.Create(ctx, user); createErr != nil {
		return nil, mapUserWriteErr(createErr)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	limit, offset = normalizePage(limit, offset)
	return s.users.List(ctx, limit, offset)
}

// Update applies a partial update to a user. A non-nil Roles list
// replaces the assignment wholesale.
func (s *UserService) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.JobTitle != nil {
		user.JobTitle = req.JobTitle
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		hash, hashErr := s.hasher.Hash(*req.Password)
		if hashErr != nil {
			return nil, fmt.Errorf("hash password: %w", hashErr)
		}
		user.PasswordHash = hash
	}
	if req.Roles != nil {
		roles, rolesErr := model.ParseRoles(req.Roles)
		if rolesErr != nil {
			return nil, apperrors.ValidationField("roles", rolesErr.Error())
		}
		user.Roles = roles
	}

	if updateErr := s.users.Update(ctx, user); updateErr != nil {
		return nil, mapUserWriteErr(updateErr)
	}
	return user, nil
}

// Delete removes a user. The acting admin cannot delete their own
// account; that would strand the session that issued the request.
func (s *UserService) Delete(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return apperrors.Validation("cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return apperrors.NotFound("User not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func mapUserWriteErr(err error) error {
	switch {
	case errors.Is(err, data.ErrEmailExists):
		return apperrors.Conflict("email is already in use")
	case errors.Is(err, data.ErrUserNotFound):
		return apperrors.NotFound("User not found")
	default:
		return fmt.Errorf("persist user: %w", err)
	}
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
