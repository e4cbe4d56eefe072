package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaekwang-park/task-api/internal/model"
)

type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategory(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, category model.Category) (model.Category, error) {
	query := `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at`

	return scanCategory(r.db.QueryRowContext(ctx, query, category.UserID, category.Name))
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, userID, categoryID string) (model.Category, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE id = $1 AND user_id = $2`

	return scanCategory(r.db.QueryRowContext(ctx, query, categoryID, userID))
}

func (r *PostgresCategoryRepository) List(ctx context.Context, userID string, page model.Page) ([]model.Category, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at, id`

	query, args := paginate(query, []any{userID}, 2, page)
	return r.query(ctx, query, args...)
}

func (r *PostgresCategoryRepository) ListAll(ctx context.Context, userID string) ([]model.Category, error) {
	return r.List(ctx, userID, model.Page{})
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, category model.Category) (model.Category, error) {
	query := `
		UPDATE categories
		SET name = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, created_at`

	return scanCategory(r.db.QueryRowContext(ctx, query, category.Name, category.ID, category.UserID))
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, userID, categoryID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET category_id = NULL, updated_at = now()
		WHERE user_id = $1 AND category_id = $2`, userID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to clear task categories: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category delete: %w", err)
	}
	return nil
}

func (r *PostgresCategoryRepository) query(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row scannable) (model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("failed to scan category: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

var _ CategoryRepository = (*PostgresCategoryRepository)(nil)
