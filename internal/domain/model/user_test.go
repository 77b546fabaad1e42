package model

import (
	"strings"
	"testing"

	"github.com/progresshq/progress-api/internal/domain/auth"
)

func strPtr(s string) *string { return &s }

func TestCreateUserRequest_Validate(t *testing.T) {
	valid := func() CreateUserRequest {
		return CreateUserRequest{
			Name:     "Ana Lima",
			Email:    "ana@example.com",
			Password: "s3cret-pass",
			Roles:    []string{"ROLE_MANAGER"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*CreateUserRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *CreateUserRequest) {}},
		{name: "valid without roles", mutate: func(r *CreateUserRequest) { r.Roles = nil }},
		{name: "empty name", mutate: func(r *CreateUserRequest) { r.Name = "  " }, wantErr: true},
		{name: "missing email", mutate: func(r *CreateUserRequest) { r.Email = "" }, wantErr: true},
		{name: "bad email shape", mutate: func(r *CreateUserRequest) { r.Email = "ana@nodot" }, wantErr: true},
		{name: "double at", mutate: func(r *CreateUserRequest) { r.Email = "a@b@c.com" }, wantErr: true},
		{name: "short password", mutate: func(r *CreateUserRequest) { r.Password = "short" }, wantErr: true},
		{name: "overlong password", mutate: func(r *CreateUserRequest) { r.Password = strings.Repeat("x", 80) }, wantErr: true},
		{name: "unknown role", mutate: func(r *CreateUserRequest) { r.Roles = []string{"ROLE_WIZARD"} }, wantErr: true},
		{name: "long name", mutate: func(r *CreateUserRequest) { r.Name = strings.Repeat("a", 300) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateUserRequest_Validate_NormalizesEmail(t *testing.T) {
	req := CreateUserRequest{Name: "Ana", Email: "  Ana@Example.COM ", Password: "s3cret-pass"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Email != "ana@example.com" {
		t.Errorf("email not normalized: %q", req.Email)
	}
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 1 || roles[0] != auth.RoleCollaborator {
		t.Errorf("empty input must default to collaborator, got %v", roles)
	}

	roles, err = ParseRoles([]string{"ROLE_ADMIN", " ROLE_COLLABORATOR "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 2 || roles[0] != auth.RoleAdmin || roles[1] != auth.RoleCollaborator {
		t.Errorf("unexpected roles: %v", roles)
	}

	if _, err = ParseRoles([]string{"admin"}); err == nil {
		t.Error("canonical names are not wire names; expected error")
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	empty := UpdateUserRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("empty update must be rejected")
	}

	bad := UpdateUserRequest{Roles: []string{}}
	if err := bad.Validate(); err == nil {
		t.Error("emptying roles must be rejected")
	}

	ok := UpdateUserRequest{Name: strPtr(" Novo Nome "), Email: strPtr("Novo@Example.com")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *ok.Name != "Novo Nome" || *ok.Email != "novo@example.com" {
		t.Errorf("fields not normalized: %q %q", *ok.Name, *ok.Email)
	}
}
