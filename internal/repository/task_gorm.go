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

type GormTaskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormTask(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db, now: time.Now}
}

func (r *GormTaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	now := r.now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	row := newTaskRow(task)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return row.toModel(), nil
}

func (r *GormTaskRepository) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	return r.first(r.db.WithContext(ctx), "id = ? AND user_id = ?", taskID, userID)
}

func (r *GormTaskRepository) GetPublic(ctx context.Context, taskID string) (model.Task, error) {
	return r.first(r.db.WithContext(ctx), "id = ? AND is_public = ? AND status <> ?",
		taskID, true, string(model.TaskStatusDeleted))
}

func (r *GormTaskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	var updated model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&taskRow{}).
			Where("id = ? AND user_id = ?", task.ID, task.UserID).
			Updates(map[string]any{
				"title":       task.Title,
				"description": task.Description,
				"status":      string(task.Status),
				"priority":    string(task.Priority),
				"category_id": task.CategoryID,
				"is_public":   task.IsPublic,
				"due_at":      utcPtr(task.DueAt),
				"updated_at":  r.now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var err error
		updated, err = r.first(tx, "id = ?", task.ID)
		return err
	})
	return updated, err
}

func (r *GormTaskRepository) Transition(ctx context.Context, userID, taskID string, from []model.TaskStatus, to model.TaskStatus) (model.Task, error) {
	var updated model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&taskRow{}).
			Where("id = ? AND user_id = ? AND status IN ?", taskID, userID, statusStrings(from)).
			Updates(map[string]any{"status": string(to), "updated_at": r.now().UTC()})
		if res.Error != nil {
			return fmt.Errorf("failed to transition task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var err error
		updated, err = r.first(tx, "id = ?", taskID)
		return err
	})
	return updated, err
}

func (r *GormTaskRepository) DeletePermanently(ctx context.Context, userID, taskID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", taskID, userID, string(model.TaskStatusDeleted)).
		Delete(&taskRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTaskRepository) List(ctx context.Context, params model.TaskListParams) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", params.UserID)

	if len(params.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(params.Statuses))
	}
	if params.Priority != nil {
		q = q.Where("priority = ?", string(*params.Priority))
	}
	if params.Category.Apply {
		if params.Category.CategoryID == nil {
			q = q.Where("category_id IS NULL")
		} else {
			q = q.Where("category_id = ?", *params.Category.CategoryID)
		}
	}

	return r.find(q.Scopes(pageScope(params.Page)))
}

func (r *GormTaskRepository) ListPublic(ctx context.Context, page model.Page) ([]model.Task, error) {
	q := r.db.WithContext(ctx).
		Where("is_public = ? AND status <> ?", true, string(model.TaskStatusDeleted)).
		Scopes(pageScope(page))
	return r.find(q)
}

func (r *GormTaskRepository) CountOwned(ctx context.Context, userID string, taskIDs []string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("user_id = ? AND id IN ?", userID, taskIDs).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return int(n), nil
}

func (r *GormTaskRepository) BatchUpdate(ctx context.Context, userID string, taskIDs []string, patch model.TaskBatchPatch) (int, error) {
	values := map[string]any{"updated_at": r.now().UTC()}
	if patch.Priority.Set {
		values["priority"] = string(patch.Priority.Value)
	}
	if patch.CategoryID.Set {
		values["category_id"] = patch.CategoryID.Value
	}

	res := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("user_id = ? AND id IN ?", userID, taskIDs).
		Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to batch update tasks: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *GormTaskRepository) BatchTransition(ctx context.Context, userID string, taskIDs []string, from []model.TaskStatus, to model.TaskStatus) (int, error) {
	res := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("user_id = ? AND id IN ? AND status IN ?", userID, taskIDs, statusStrings(from)).
		Updates(map[string]any{"status": string(to), "updated_at": r.now().UTC()})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to batch transition tasks: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *GormTaskRepository) first(db *gorm.DB, query string, args ...any) (model.Task, error) {
	var row taskRow
	if err := db.Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return row.toModel(), nil
}

func (r *GormTaskRepository) find(q *gorm.DB) ([]model.Task, error) {
	var rows []taskRow
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := make([]model.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toModel()
	}
	return tasks, nil
}

var _ TaskRepository = (*GormTaskRepository)(nil)
