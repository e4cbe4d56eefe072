package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jaekwang-park/task-api/internal/model"
)

type GormCategoryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormCategory(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db, now: time.Now}
}

func (r *GormCategoryRepository) Create(ctx context.Context, category model.Category) (model.Category, error) {
	row := categoryRow{
		ID:        uuid.NewString(),
		UserID:    category.UserID,
		Name:      category.Name,
		CreatedAt: r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	return row.toModel(), nil
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, userID, categoryID string) (model.Category, error) {
	return r.first(r.db.WithContext(ctx), categoryID, userID)
}

func (r *GormCategoryRepository) List(ctx context.Context, userID string, page model.Page) ([]model.Category, error) {
	var rows []categoryRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Scopes(pageScope(page)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]model.Category, len(rows))
	for i, row := range rows {
		categories[i] = row.toModel()
	}
	return categories, nil
}

func (r *GormCategoryRepository) ListAll(ctx context.Context, userID string) ([]model.Category, error) {
	return r.List(ctx, userID, model.Page{})
}

func (r *GormCategoryRepository) Update(ctx context.Context, category model.Category) (model.Category, error) {
	var updated model.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&categoryRow{}).
			Where("id = ? AND user_id = ?", category.ID, category.UserID).
			Update("name", category.Name)
		if res.Error != nil {
			return fmt.Errorf("failed to update category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var err error
		updated, err = r.first(tx, category.ID, category.UserID)
		return err
	})
	return updated, err
}

func (r *GormCategoryRepository) Delete(ctx context.Context, userID, categoryID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&taskRow{}).
			Where("user_id = ? AND category_id = ?", userID, categoryID).
			Updates(map[string]any{"category_id": nil, "updated_at": r.now().UTC()}).Error
		if err != nil {
			return fmt.Errorf("failed to clear task categories: %w", err)
		}

		res := tx.Where("id = ? AND user_id = ?", categoryID, userID).Delete(&categoryRow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormCategoryRepository) first(db *gorm.DB, categoryID, userID string) (model.Category, error) {
	var row categoryRow
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return row.toModel(), nil
}

var _ CategoryRepository = (*GormCategoryRepository)(nil)
