package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/progresshq/progress-api/internal/data/pgxutil"
	"github.com/progresshq/progress-api/internal/domain/model"
)

// PDIRepo provides database operations for development plans and their goals.
type PDIRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPDIRepo creates a new PDIRepo with real time provider.
func NewPDIRepo(db *sql.DB) *PDIRepo {
	return &PDIRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPDIRepoWithTimeProvider creates a new PDIRepo with a custom time provider.
func NewPDIRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PDIRepo {
	return &PDIRepo{DB: db, timeProvider: tp}
}

const pdiColumns = `id, title, description, collaborator_id, manager_id, status,
	start_date, due_date, completed_date, created_at, updated_at`

const pdiGoalColumns = `id, pdi_id, description, actions, resources, deadline, done, feedback`

// Create inserts a new plan and its goals in one transaction.
// The plan's ID and timestamps are filled in on success.
func (r *PDIRepo) Create(ctx context.Context, pdi *model.PDI) error {
	if pdi == nil {
		return errors.New("pdi is required")
	}

	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO pdis (
				title, description, collaborator_id, manager_id, status,
				start_date, due_date, completed_date, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, $8)
			RETURNING `+pdiColumns,
			pdi.Title, pdi.Description, pdi.CollaboratorID, pdi.ManagerID,
			pdi.Status, pdi.StartDate, pdi.DueDate, now,
		)
		if err != nil {
			return err
		}
		created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.PDI])
		if err != nil {
			return err
		}
		goals := pdi.Goals
		*pdi = created
		pdi.Goals, err = r.insertGoals(ctx, tx, pdi.ID, goals)
		return err
	}})
	if err != nil {
		return fmt.Errorf("failed to create pdi: %w", err)
	}
	return nil
}

// GetByID retrieves a plan with its goals.
func (r *PDIRepo) GetByID(ctx context.Context, id int64) (*model.PDI, error) {
	var pdi model.PDI
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+pdiColumns+` FROM pdis WHERE id = $1`, id)
		if err != nil {
			return err
		}
		pdi, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.PDI])
		if err != nil {
			return err
		}
		goalRows, err := conn.Query(ctx, `
			SELECT `+pdiGoalColumns+` FROM pdi_goals WHERE pdi_id = $1 ORDER BY id`, id)
		if err != nil {
			return err
		}
		pdi.Goals, err = pgx.CollectRows(goalRows, pgx.RowToStructByName[model.PDIGoal])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPDINotFound
		}
		return nil, fmt.Errorf("failed to get pdi: %w", err)
	}
	return &pdi, nil
}

// List retrieves plans newest first with optional filters, goals included.
func (r *PDIRepo) List(ctx context.Context, opts model.PDIListOptions) ([]model.PDI, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where, args := buildPDIFilters(opts)
	args = append(args, limit, offset)
	query := `SELECT ` + pdiColumns + ` FROM pdis` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	var pdis []model.PDI
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		pdis, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.PDI])
		if err != nil {
			return err
		}
		return r.loadGoalsBulk(ctx, conn, pdis)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pdis: %w", err)
	}
	return pdis, nil
}

// Update rewrites the plan's mutable columns and, when Goals is non-nil,
// replaces the goal list. UpdatedAt is refreshed on success.
func (r *PDIRepo) Update(ctx context.Context, pdi *model.PDI) error {
	if pdi == nil || pdi.ID == 0 {
		return errors.New("pdi with ID is required")
	}

	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE pdis
			SET title = $2, description = $3, manager_id = $4, status = $5,
			    start_date = $6, due_date = $7, completed_date = $8, updated_at = $9
			WHERE id = $1
			RETURNING `+pdiColumns,
			pdi.ID, pdi.Title, pdi.Description, pdi.ManagerID, pdi.Status,
			pdi.StartDate, pdi.DueDate, pdi.CompletedDate, now,
		)
		if err != nil {
			return err
		}
		updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.PDI])
		if err != nil {
			return err
		}
		goals := pdi.Goals
		*pdi = updated
		if goals == nil {
			pdi.Goals, err = r.loadGoalsTx(ctx, tx, pdi.ID)
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM pdi_goals WHERE pdi_id = $1`, pdi.ID); err != nil {
			return err
		}
		pdi.Goals, err = r.insertGoals(ctx, tx, pdi.ID, goals)
		return err
	}})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPDINotFound
		}
		return fmt.Errorf("failed to update pdi: %w", err)
	}
	return nil
}

// Delete deletes a plan by ID. Goals cascade.
func (r *PDIRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM pdis WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete pdi: %w", err)
	}
	if affected == 0 {
		return ErrPDINotFound
	}
	return nil
}

// --- helpers ---

func (r *PDIRepo) insertGoals(ctx context.Context, tx pgx.Tx, pdiID int64, goals []model.PDIGoal) ([]model.PDIGoal, error) {
	out := make([]model.PDIGoal, 0, len(goals))
	for _, g := range goals {
		rows, err := tx.Query(ctx, `
			INSERT INTO pdi_goals (pdi_id, description, actions, resources, deadline, done, feedback)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+pdiGoalColumns,
			pdiID, g.Description, g.Actions, g.Resources, g.Deadline, g.Done, g.Feedback,
		)
		if err != nil {
			return nil, err
		}
		created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.PDIGoal])
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *PDIRepo) loadGoalsTx(ctx context.Context, tx pgx.Tx, pdiID int64) ([]model.PDIGoal, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+pdiGoalColumns+` FROM pdi_goals WHERE pdi_id = $1 ORDER BY id`, pdiID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.PDIGoal])
}

// loadGoalsBulk fills Goals for each plan in a single query.
func (r *PDIRepo) loadGoalsBulk(ctx context.Context, conn *pgx.Conn, pdis []model.PDI) error {
	if len(pdis) == 0 {
		return nil
	}
	ids := make([]int64, len(pdis))
	index := make(map[int64]int, len(pdis))
	for i := range pdis {
		ids[i] = pdis[i].ID
		index[pdis[i].ID] = i
		pdis[i].Goals = []model.PDIGoal{}
	}

	rows, err := conn.Query(ctx, `
		SELECT `+pdiGoalColumns+` FROM pdi_goals WHERE pdi_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	goals, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.PDIGoal])
	if err != nil {
		return err
	}
	for _, g := range goals {
		if i, ok := index[g.PDIID]; ok {
			pdis[i].Goals = append(pdis[i].Goals, g)
		}
	}
	return nil
}

// buildPDIFilters builds the WHERE clause and args for List.
func buildPDIFilters(opts model.PDIListOptions) (string, []any) {
	var conds []string
	var args []any
	nextIdx := func() int { return len(args) + 1 }

	if opts.CollaboratorID != nil {
		conds = append(conds, "collaborator_id = $"+strconv.Itoa(nextIdx()))
		args = append(args, *opts.CollaboratorID)
	}
	if opts.ManagerID != nil {
		conds = append(conds, "manager_id = $"+strconv.Itoa(nextIdx()))
		args = append(args, *opts.ManagerID)
	}
	if opts.Status != nil {
		conds = append(conds, "status = $"+strconv.Itoa(nextIdx()))
		args = append(args, *opts.Status)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
