package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/repository"
)

type CategoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) Create(ctx context.Context, userID, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	created, err := s.repo.Create(ctx, model.Category{UserID: userID, Name: name})
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	return created, nil
}

func (s *CategoryService) GetByID(ctx context.Context, userID, categoryID string) (model.Category, error) {
	if !validID(categoryID) {
		return model.Category{}, ErrNotFound
	}
	category, err := s.repo.GetByID(ctx, userID, categoryID)
	if err != nil {
		return model.Category{}, lookupErr(err, "get category")
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, userID string, page model.Page) (model.CategoryListResult, error) {
	if err := validatePage(page); err != nil {
		return model.CategoryListResult{}, err
	}
	categories, err := s.repo.List(ctx, userID, page)
	if err != nil {
		return model.CategoryListResult{}, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return model.CategoryListResult{Categories: categories, Offset: page.Offset, Limit: page.Limit}, nil
}

func (s *CategoryService) Rename(ctx context.Context, userID, categoryID, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if !validID(categoryID) {
		return model.Category{}, ErrNotFound
	}

	updated, err := s.repo.Update(ctx, model.Category{ID: categoryID, UserID: userID, Name: name})
	if err != nil {
		return model.Category{}, lookupErr(err, "update category")
	}
	return updated, nil
}

// Delete removes a category. Tasks that used it become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if !validID(categoryID) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, userID, categoryID); err != nil {
		return lookupErr(err, "delete category")
	}
	return nil
}
