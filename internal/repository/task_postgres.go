package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jaekwang-park/task-api/internal/model"
)

const taskColumns = `id, user_id, title, description, status, priority, category_id, is_public, due_at, created_at, updated_at`

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTask(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, status, priority, category_id, is_public, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Status, task.Priority,
		task.CategoryID, task.IsPublic, task.DueAt,
	)
	return scanTask(row)
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	return scanTask(r.db.QueryRowContext(ctx, query, taskID, userID))
}

func (r *PostgresTaskRepository) GetPublic(ctx context.Context, taskID string) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND is_public AND status <> $2`

	return scanTask(r.db.QueryRowContext(ctx, query, taskID, model.TaskStatusDeleted))
}

func (r *PostgresTaskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
		    category_id = $5, is_public = $6, due_at = $7, updated_at = now()
		WHERE id = $8 AND user_id = $9
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority,
		task.CategoryID, task.IsPublic, task.DueAt, task.ID, task.UserID,
	)
	return scanTask(row)
}

func (r *PostgresTaskRepository) Transition(ctx context.Context, userID, taskID string, from []model.TaskStatus, to model.TaskStatus) (model.Task, error) {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND status = ANY($4)
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query, to, taskID, userID, pq.Array(statusStrings(from)))
	return scanTask(row)
}

func (r *PostgresTaskRepository) DeletePermanently(ctx context.Context, userID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, taskID, userID, model.TaskStatusDeleted)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, params model.TaskListParams) ([]model.Task, error) {
	args := []any{params.UserID}
	argIdx := 2

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`

	if len(params.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, pq.Array(statusStrings(params.Statuses)))
		argIdx++
	}

	if params.Priority != nil {
		query += fmt.Sprintf(" AND priority = $%d", argIdx)
		args = append(args, string(*params.Priority))
		argIdx++
	}

	if params.Category.Apply {
		if params.Category.CategoryID == nil {
			query += " AND category_id IS NULL"
		} else {
			query += fmt.Sprintf(" AND category_id = $%d", argIdx)
			args = append(args, *params.Category.CategoryID)
			argIdx++
		}
	}

	query += " ORDER BY created_at DESC, id DESC"
	query, args = paginate(query, args, argIdx, params.Page)

	return r.queryTasks(ctx, query, args...)
}

func (r *PostgresTaskRepository) ListPublic(ctx context.Context, page model.Page) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE is_public AND status <> $1 ORDER BY created_at DESC, id DESC`

	query, args := paginate(query, []any{model.TaskStatusDeleted}, 2, page)
	return r.queryTasks(ctx, query, args...)
}

func (r *PostgresTaskRepository) CountOwned(ctx context.Context, userID string, taskIDs []string) (int, error) {
	query := `SELECT count(*) FROM tasks WHERE user_id = $1 AND id = ANY($2::uuid[])`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, pq.Array(taskIDs)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func (r *PostgresTaskRepository) BatchUpdate(ctx context.Context, userID string, taskIDs []string, patch model.TaskBatchPatch) (int, error) {
	var sets []string
	var args []any
	argIdx := 1

	if patch.Priority.Set {
		sets = append(sets, fmt.Sprintf("priority = $%d", argIdx))
		args = append(args, patch.Priority.Value)
		argIdx++
	}
	if patch.CategoryID.Set {
		sets = append(sets, fmt.Sprintf("category_id = $%d", argIdx))
		args = append(args, patch.CategoryID.Value)
		argIdx++
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE tasks SET %s WHERE user_id = $%d AND id = ANY($%d::uuid[])",
		strings.Join(sets, ", "), argIdx, argIdx+1,
	)
	args = append(args, userID, pq.Array(taskIDs))

	return r.exec(ctx, "batch update tasks", query, args...)
}

func (r *PostgresTaskRepository) BatchTransition(ctx context.Context, userID string, taskIDs []string, from []model.TaskStatus, to model.TaskStatus) (int, error) {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = now()
		WHERE user_id = $2 AND id = ANY($3::uuid[]) AND status = ANY($4)`

	return r.exec(ctx, "batch transition tasks", query,
		to, userID, pq.Array(taskIDs), pq.Array(statusStrings(from)),
	)
}

func (r *PostgresTaskRepository) exec(ctx context.Context, op, query string, args ...any) (int, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

func (r *PostgresTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// paginate appends OFFSET and, for a positive limit, LIMIT placeholders.
func paginate(query string, args []any, argIdx int, page model.Page) (string, []any) {
	query += fmt.Sprintf(" OFFSET $%d", argIdx)
	args = append(args, page.Offset)
	if page.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx+1)
		args = append(args, page.Limit)
	}
	return query, args
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTask(row scannable) (model.Task, error) {
	var t model.Task
	var categoryID sql.NullString
	var dueAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&categoryID, &t.IsPublic, &dueAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.String
	}
	if dueAt.Valid {
		due := dueAt.Time.UTC()
		t.DueAt = &due
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

var _ TaskRepository = (*PostgresTaskRepository)(nil)
