package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/progresshq/progress-api/internal/domain/auth"
)

const (
	maxUserNameLen  = 255
	maxEmailLen     = 255
	minPasswordLen  = 8
	maxJobTitleLen  = 120
	maxDeptLen      = 120
	maxPasswordLen  = 72 // bcrypt input limit
)

// User represents an application user. PasswordHash never leaves the
// data layer; API responses carry this struct with the hash stripped
// by the service.
type User struct {
	ID           int64       `json:"id"                   db:"id"`
	Name         string      `json:"name"                 db:"name"`
	Email        string      `json:"email"                db:"email"`
	JobTitle     *string     `json:"job_title,omitempty"  db:"job_title"`
	Department   *string     `json:"department,omitempty" db:"department"`
	Active       bool        `json:"active"               db:"active"`
	PasswordHash string      `json:"-"                    db:"password_hash"`
	Roles        []auth.Role `json:"roles"                db:"-"`
	CreatedAt    time.Time   `json:"created_at"           db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"           db:"updated_at"`
}

// CreateUserRequest represents parameters to create a User.
// Roles arrive as wire names (ROLE_ADMIN etc.); a missing list
// defaults to collaborator.
type CreateUserRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	JobTitle   *string  `json:"job_title,omitempty"`
	Department *string  `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// UpdateUserRequest represents parameters to update a User.
type UpdateUserRequest struct {
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Password   *string  `json:"password,omitempty"`
	JobTitle   *string  `json:"job_title,omitempty"`
	Department *string  `json:"department,omitempty"`
	Active     *bool    `json:"active,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// validEmail performs a shape check only: one @, non-empty local and
// domain parts, a dot in the domain. Full RFC validation is not the goal.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.IndexByte(domain, '@') >= 0 {
		return false
	}
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func validPassword(pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if len(pw) > maxPasswordLen {
		return errors.New("password cannot exceed 72 bytes")
	}
	return nil
}

// ParseRoles maps wire role names to canonical roles, rejecting
// unknown names. An empty input yields the collaborator default.
func ParseRoles(names []string) ([]auth.Role, error) {
	if len(names) == 0 {
		return []auth.Role{auth.RoleCollaborator}, nil
	}
	out := make([]auth.Role, 0, len(names))
	for _, n := range names {
		r, ok := auth.ParseWireRole(strings.TrimSpace(n))
		if !ok {
			return nil, errors.New("unknown role: " + n)
		}
		out = append(out, r)
	}
	return out, nil
}

// Validate validates CreateUserRequest and normalizes the email.
func (r *CreateUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Name) > maxUserNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return errors.New("email is required")
	}
	if len(r.Email) > maxEmailLen || !validEmail(r.Email) {
		return errors.New("invalid email")
	}
	if err := validPassword(r.Password); err != nil {
		return err
	}
	if r.JobTitle != nil && utf8.RuneCountInString(*r.JobTitle) > maxJobTitleLen {
		return errors.New("job_title cannot exceed 120 characters")
	}
	if r.Department != nil && utf8.RuneCountInString(*r.Department) > maxDeptLen {
		return errors.New("department cannot exceed 120 characters")
	}
	if _, err := ParseRoles(r.Roles); err != nil {
		return err
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateUserRequest.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.Name != nil || r.Email != nil || r.Password != nil || r.JobTitle != nil ||
		r.Department != nil ||
		r.Active != nil ||
		r.Roles != nil
}

// Validate validates UpdateUserRequest, ensuring at least one field is set.
func (r *UpdateUserRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxUserNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
		*r.Name = n
	}
	if r.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*r.Email))
		if e == "" || len(e) > maxEmailLen || !validEmail(e) {
			return errors.New("invalid email")
		}
		*r.Email = e
	}
	if r.Password != nil {
		if err := validPassword(*r.Password); err != nil {
			return err
		}
	}
	if r.Roles != nil {
		if len(r.Roles) == 0 {
			return errors.New("roles cannot be emptied")
		}
		if _, err := ParseRoles(r.Roles); err != nil {
			return err
		}
	}
	return nil
}
