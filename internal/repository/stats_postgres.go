package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jaekwang-park/task-api/internal/model"
)

type PostgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStats(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

func (r *PostgresStatsRepository) CountByStatus(ctx context.Context, userID string) (map[model.TaskStatus]int, error) {
	query := `SELECT status, count(*) FROM tasks WHERE user_id = $1 GROUP BY status`

	out := make(map[model.TaskStatus]int)
	err := r.groupCount(ctx, query, []any{userID}, func(key string, n int) {
		out[model.TaskStatus(key)] = n
	})
	return out, err
}

func (r *PostgresStatsRepository) CountCreatedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD'), count(*)
		FROM tasks
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY 1`

	return r.countByDay(ctx, query, userID, from, to)
}

func (r *PostgresStatsRepository) CountCompletedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT to_char(updated_at AT TIME ZONE 'UTC', 'YYYY-MM-DD'), count(*)
		FROM tasks
		WHERE user_id = $1 AND status = $4 AND updated_at >= $2 AND updated_at < $3
		GROUP BY 1`

	out := make(map[string]int)
	err := r.groupCount(ctx, query, []any{userID, from, to, model.TaskStatusCompleted}, func(key string, n int) {
		out[key] = n
	})
	return out, err
}

func (r *PostgresStatsRepository) CountOpenByCategory(ctx context.Context, userID string) (map[string]int, error) {
	query := `
		SELECT COALESCE(category_id::text, ''), count(*)
		FROM tasks
		WHERE user_id = $1 AND status = $2
		GROUP BY 1`

	out := make(map[string]int)
	err := r.groupCount(ctx, query, []any{userID, model.TaskStatusPending}, func(key string, n int) {
		out[key] = n
	})
	return out, err
}

func (r *PostgresStatsRepository) CountOpenByPriority(ctx context.Context, userID string) (map[model.Priority]int, error) {
	query := `
		SELECT priority, count(*)
		FROM tasks
		WHERE user_id = $1 AND status = $2
		GROUP BY priority`

	out := make(map[model.Priority]int)
	err := r.groupCount(ctx, query, []any{userID, model.TaskStatusPending}, func(key string, n int) {
		out[model.Priority(key)] = n
	})
	return out, err
}

func (r *PostgresStatsRepository) CountOpenOverdue(ctx context.Context, userID string, now time.Time) (int, int, error) {
	query := `
		SELECT count(*) FILTER (WHERE due_at IS NOT NULL AND due_at < $3), count(*)
		FROM tasks
		WHERE user_id = $1 AND status = $2`

	var overdue, open int
	err := r.db.QueryRowContext(ctx, query, userID, model.TaskStatusPending, now).Scan(&overdue, &open)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return overdue, open, nil
}

func (r *PostgresStatsRepository) countByDay(ctx context.Context, query, userID string, from, to time.Time) (map[string]int, error) {
	out := make(map[string]int)
	err := r.groupCount(ctx, query, []any{userID, from, to}, func(key string, n int) {
		out[key] = n
	})
	return out, err
}

// groupCount runs a two-column (key, count) query and feeds each row to add.
func (r *PostgresStatsRepository) groupCount(ctx context.Context, query string, args []any, add func(key string, n int)) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to aggregate tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan aggregate: %w", err)
		}
		add(key, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate aggregate: %w", err)
	}
	return nil
}

var _ StatsRepository = (*PostgresStatsRepository)(nil)
