package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/progresshq/progress-api/internal/data/pgxutil"
	apperrors "github.com/progresshq/progress-api/internal/errors"
	domainauth "github.com/progresshq/progress-api/internal/domain/auth"
	"github.com/progresshq/progress-api/internal/domain/model"
)

// UserRepo provides database operations for users and their role assignments.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

const userColumns = `id, name, email, password_hash, job_title, department, active, created_at, updated_at`

// Create inserts a new user and its role assignments in one transaction.
// The user's ID, CreatedAt, and UpdatedAt are filled in on success.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user is required")
	}

	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO users (name, email, password_hash, job_title, department, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+userColumns,
			user.Name, user.Email, user.PasswordHash, user.JobTitle, user.Department, user.Active, now,
		)
		if err != nil {
			return err
		}
		created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		if err != nil {
			return err
		}
		created.Roles = user.Roles
		*user = created
		return r.replaceRoles(ctx, tx, user.ID, user.Roles)
	}})
	if err != nil {
		return r.mapWriteErr(err, false)
	}
	return nil
}

// GetByID retrieves a user by ID, including roles.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getByQuery(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email (case-insensitive), including roles.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByQuery(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// List retrieves users with pagination, including roles.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var users []model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+userColumns+`
			FROM users
			ORDER BY created_at DESC, id DESC
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		if err != nil {
			return err
		}
		return r.loadRolesBulk(ctx, conn, users)
	}); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update rewrites the user's mutable columns and replaces its role
// assignments. UpdatedAt is refreshed on success.
func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("user with ID is required")
	}

	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE users
			SET name = $2, email = $3, password_hash = $4, job_title = $5,
			    department = $6, active = $7, updated_at = $8
			WHERE id = $1
			RETURNING `+userColumns,
			user.ID, user.Name, user.Email, user.PasswordHash, user.JobTitle,
			user.Department, user.Active, now,
		)
		if err != nil {
			return err
		}
		updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		if err != nil {
			return err
		}
		updated.Roles = user.Roles
		*user = updated
		return r.replaceRoles(ctx, tx, user.ID, user.Roles)
	}})
	if err != nil {
		return r.mapWriteErr(err, true)
	}
	return nil
}

// Delete deletes a user by ID. Role assignments cascade.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// --- helpers ---

func (r *UserRepo) getByQuery(ctx context.Context, q string, arg any) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, arg)
		if err != nil {
			return err
		}
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		if err != nil {
			return err
		}
		user.Roles, err = r.loadRoles(ctx, conn, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// loadRoles fetches role wire names for one user and maps them to
// canonical roles. Unknown names in the table are skipped.
func (r *UserRepo) loadRoles(ctx context.Context, conn *pgx.Conn, userID int64) ([]domainauth.Role, error) {
	rows, err := conn.Query(ctx, `
		SELECT ro.name
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ro.id`, userID)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	roles := make([]domainauth.Role, 0, len(names))
	for _, n := range names {
		if role, ok := domainauth.ParseWireRole(n); ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

// loadRolesBulk fills Roles for each user in a single query.
func (r *UserRepo) loadRolesBulk(ctx context.Context, conn *pgx.Conn, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	rows, err := conn.Query(ctx, `
		SELECT ur.user_id, ro.name
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ur.user_id = ANY($1)
		ORDER BY ro.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byUser := make(map[int64][]domainauth.Role, len(users))
	for rows.Next() {
		var userID int64
		var name string
		if err := rows.Scan(&userID, &name); err != nil {
			return err
		}
		if role, ok := domainauth.ParseWireRole(name); ok {
			byUser[userID] = append(byUser[userID], role)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range users {
		roles := byUser[users[i].ID]
		if roles == nil {
			roles = []domainauth.Role{}
		}
		users[i].Roles = roles
	}
	return nil
}

// replaceRoles rewrites the user's role assignments inside the given transaction.
func (r *UserRepo) replaceRoles(ctx context.Context, tx pgx.Tx, userID int64, roles []domainauth.Role) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, role := range roles {
		wireName := role.WireName()
		if wireName == "" {
			return fmt.Errorf("unknown role %q", role)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
			ON CONFLICT DO NOTHING`, userID, wireName); err != nil {
			return err
		}
	}
	return nil
}

// mapWriteErr translates write failures: the email unique constraint
// becomes ErrEmailExists so callers can branch on it, a missing row on
// update becomes ErrUserNotFound, and everything else goes through the
// shared DB error taxonomy.
func (r *UserRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrEmailExists
	}
	return apperrors.MapDBError(err)
}
