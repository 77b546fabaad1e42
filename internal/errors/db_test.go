package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError_Nil(t *testing.T) {
	assert.Nil(t, MapDBError(nil))
}

func TestMapDBError_ContextErrors(t *testing.T) {
	assert.True(t, IsTimeout(MapDBError(context.DeadlineExceeded)))
	assert.True(t, IsCanceled(MapDBError(context.Canceled)))
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(pgx.ErrNoRows)
	assert.True(t, IsNotFound(err))
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		Detail:         `Key (email)=(ana@example.com) already exists.`,
		ConstraintName: "users_email_key",
	}
	err := MapDBError(pgErr)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "email", GetField(err))
}

func TestMapDBError_UniqueViolation_ConstraintFallback(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "users_email_key",
	}
	err := MapDBError(pgErr)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "email", GetField(err))
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		wantSub string
	}{
		{
			name:    "parent still referenced",
			detail:  `Key (id)=(7) is still referenced from table "pdis".`,
			wantSub: "Development Plan",
		},
		{
			name:    "missing parent",
			detail:  `Key (recipient_id)=(99) is not present in table "users".`,
			wantSub: "User",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: tt.detail}
			err := MapDBError(pgErr)
			assert.True(t, IsForeignKey(err))
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "title"}
	err := MapDBError(pgErr)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "title", GetField(err))
}

func TestMapDBError_CheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.CheckViolation}
	assert.True(t, IsValidation(MapDBError(pgErr)))
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	assert.True(t, IsInternal(MapDBError(pgErr)))
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := stderrors.New("some other failure")
	assert.Equal(t, plain, MapDBError(plain))
}
