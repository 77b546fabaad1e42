package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/progresshq/progress-api/internal/data/pgxutil"
	"github.com/progresshq/progress-api/internal/domain/model"
)

// DashboardRepo serves the aggregate counts behind the admin dashboard.
type DashboardRepo struct {
	DB *sql.DB
}

// NewDashboardRepo creates a new DashboardRepo.
func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{DB: db}
}

// UserCounts returns user totals and a per-role count keyed by wire role name.
func (r *DashboardRepo) UserCounts(ctx context.Context) (total, active int64, byRole map[string]int64, err error) {
	byRole = make(map[string]int64)
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if scanErr := conn.QueryRow(ctx, `
			SELECT count(*), count(*) FILTER (WHERE active)
			FROM users`).Scan(&total, &active); scanErr != nil {
			return scanErr
		}

		rows, queryErr := conn.Query(ctx, `
			SELECT ro.name, count(DISTINCT ur.user_id)
			FROM user_roles ur
			JOIN roles ro ON ro.id = ur.role_id
			GROUP BY ro.name`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			var count int64
			if scanErr := rows.Scan(&name, &count); scanErr != nil {
				return scanErr
			}
			byRole[name] = count
		}
		return rows.Err()
	})
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to count users: %w", err)
	}
	return total, active, byRole, nil
}

// PDICounts returns the plan total and a per-status count.
func (r *DashboardRepo) PDICounts(ctx context.Context) (total int64, byStatus map[string]int64, err error) {
	byStatus = make(map[string]int64)
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `SELECT status, count(*) FROM pdis GROUP BY status`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int64
			if scanErr := rows.Scan(&status, &count); scanErr != nil {
				return scanErr
			}
			byStatus[status] = count
			total += count
		}
		return rows.Err()
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count pdis: %w", err)
	}
	return total, byStatus, nil
}

// FeedbackTotal returns the total number of feedbacks.
func (r *DashboardRepo) FeedbackTotal(ctx context.Context) (int64, error) {
	var total int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT count(*) FROM feedbacks`).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count feedbacks: %w", err)
	}
	return total, nil
}

// RecentFeedbacks returns the most recent feedbacks, newest first.
func (r *DashboardRepo) RecentFeedbacks(ctx context.Context, limit int) ([]model.Feedback, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []model.Feedback
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT `+feedbackColumns+`
			FROM feedbacks
			ORDER BY sent_at DESC, id DESC
			LIMIT $1`, limit)
		if queryErr != nil {
			return queryErr
		}
		collected, collectErr := pgx.CollectRows(rows, pgx.RowToStructByName[feedbackRow])
		if collectErr != nil {
			return collectErr
		}
		out = make([]model.Feedback, len(collected))
		for i, row := range collected {
			out[i] = row.toModel()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent feedbacks: %w", err)
	}
	return out, nil
}
