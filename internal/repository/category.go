package repository

import (
	"context"

	"github.com/jaekwang-park/task-api/internal/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, category model.Category) (model.Category, error)
	GetByID(ctx context.Context, userID, categoryID string) (model.Category, error)
	List(ctx context.Context, userID string, page model.Page) ([]model.Category, error)
	ListAll(ctx context.Context, userID string) ([]model.Category, error)
	Update(ctx context.Context, category model.Category) (model.Category, error)
	// Delete removes the category and clears the reference on every task of
	// the owner that used it, in one transaction.
	Delete(ctx context.Context, userID, categoryID string) error
}
