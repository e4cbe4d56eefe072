package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/repository"
)

// liveStatuses are the statuses a task may be soft-deleted from.
var liveStatuses = []model.TaskStatus{model.TaskStatusPending, model.TaskStatusCompleted}

// parseDueAt parses an RFC3339 string into *time.Time.
// Returns nil if input is nil.
func parseDueAt(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due_at format, expected RFC3339", ErrInvalidInput)
	}
	t = t.UTC()
	return &t, nil
}

// validID reports whether id has the shape of a stored identifier. Malformed
// ids can never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validatePage(page model.Page) error {
	if page.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if page.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	return nil
}

type CreateTaskInput struct {
	Title       string
	Description string
	DueAt       *string // RFC3339
	Priority    model.Priority
	CategoryID  *string
	IsPublic    bool
}

type UpdateTaskInput struct {
	Title       model.Optional[string]
	Description model.Optional[string]
	DueAt       model.Optional[*string]
	Priority    model.Optional[model.Priority]
	Status      model.Optional[model.TaskStatus]
	CategoryID  model.Optional[*string]
	IsPublic    model.Optional[bool]
}

type BatchUpdateInput struct {
	TaskIDs    []string
	Priority   model.Optional[model.Priority]
	CategoryID model.Optional[*string]
}

type TaskService struct {
	repo       repository.TaskRepository
	categories repository.CategoryRepository
}

func NewTaskService(repo repository.TaskRepository, categories repository.CategoryRepository) *TaskService {
	return &TaskService{repo: repo, categories: categories}
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return model.Task{}, fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, priority)
	}

	dueAt, err := parseDueAt(input.DueAt)
	if err != nil {
		return model.Task{}, err
	}

	if err := s.checkCategory(ctx, userID, input.CategoryID); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.TaskStatusPending,
		Priority:    priority,
		CategoryID:  input.CategoryID,
		IsPublic:    input.IsPublic,
		DueAt:       dueAt,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// GetByID returns an owned task outside the recycle bin.
func (s *TaskService) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if task.Status == model.TaskStatusDeleted {
		return model.Task{}, ErrNotFound
	}
	return task, nil
}

// List returns the caller's tasks. Without a status filter the recycle bin
// is left out.
func (s *TaskService) List(ctx context.Context, params model.TaskListParams) (model.TaskListResult, error) {
	if err := validatePage(params.Page); err != nil {
		return model.TaskListResult{}, err
	}
	tasks, err := s.list(ctx, params)
	if err != nil {
		return model.TaskListResult{}, err
	}
	return model.TaskListResult{Tasks: tasks, Offset: params.Page.Offset, Limit: params.Page.Limit}, nil
}

func (s *TaskService) ListDeleted(ctx context.Context, userID string, page model.Page) (model.TaskListResult, error) {
	return s.List(ctx, model.TaskListParams{
		UserID:   userID,
		Statuses: []model.TaskStatus{model.TaskStatusDeleted},
		Page:     page,
	})
}

// Export returns every task matching params, ignoring pagination.
func (s *TaskService) Export(ctx context.Context, params model.TaskListParams) ([]model.Task, error) {
	params.Page = model.Page{}
	return s.list(ctx, params)
}

func (s *TaskService) list(ctx context.Context, params model.TaskListParams) ([]model.Task, error) {
	if len(params.Statuses) == 0 {
		params.Statuses = model.DefaultListStatuses()
	}
	if params.Priority != nil && !params.Priority.IsValid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, *params.Priority)
	}
	if id := params.Category.CategoryID; params.Category.Apply && id != nil && !validID(*id) {
		return nil, fmt.Errorf("%w: invalid category_id %q", ErrInvalidInput, *id)
	}

	tasks, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *TaskService) ListPublic(ctx context.Context, page model.Page) (model.TaskListResult, error) {
	if err := validatePage(page); err != nil {
		return model.TaskListResult{}, err
	}
	tasks, err := s.repo.ListPublic(ctx, page)
	if err != nil {
		return model.TaskListResult{}, fmt.Errorf("failed to list public tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return model.TaskListResult{Tasks: tasks, Offset: page.Offset, Limit: page.Limit}, nil
}

func (s *TaskService) GetPublic(ctx context.Context, taskID string) (model.Task, error) {
	if !validID(taskID) {
		return model.Task{}, ErrNotFound
	}
	task, err := s.repo.GetPublic(ctx, taskID)
	if err != nil {
		return model.Task{}, lookupErr(err, "get public task")
	}
	return task, nil
}

// Update merges the supplied fields into an owned task of any status. A
// status change must follow the lifecycle.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, input UpdateTaskInput) (model.Task, error) {
	existing, err := s.find(ctx, userID, taskID)
	if err != nil {
		return model.Task{}, err
	}

	patch := model.TaskPatch{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		CategoryID:  input.CategoryID,
		IsPublic:    input.IsPublic,
	}

	if patch.Title.Set && strings.TrimSpace(patch.Title.Value) == "" {
		return model.Task{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if patch.Priority.Set && !patch.Priority.Value.IsValid() {
		return model.Task{}, fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, patch.Priority.Value)
	}
	if patch.Status.Set {
		next := patch.Status.Value
		if !next.IsValid() {
			return model.Task{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, next)
		}
		if !existing.Status.CanTransitionTo(next) {
			return model.Task{}, fmt.Errorf("%w: cannot move task from %s to %s", ErrInvalidState, existing.Status, next)
		}
	}
	if input.DueAt.Set {
		dueAt, err := parseDueAt(input.DueAt.Value)
		if err != nil {
			return model.Task{}, err
		}
		patch.DueAt = model.Some(dueAt)
	}
	if patch.CategoryID.Set {
		if err := s.checkCategory(ctx, userID, patch.CategoryID.Value); err != nil {
			return model.Task{}, err
		}
	}

	updated, err := s.repo.Update(ctx, patch.Apply(existing))
	if err != nil {
		return model.Task{}, lookupErr(err, "update task")
	}
	return updated, nil
}

// SoftDelete moves a task to the recycle bin. Deleting a task that is
// already there succeeds.
func (s *TaskService) SoftDelete(ctx context.Context, userID, taskID string) error {
	if !validID(taskID) {
		return ErrNotFound
	}
	_, err := s.repo.Transition(ctx, userID, taskID, liveStatuses, model.TaskStatusDeleted)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	// Nothing moved: either the task is already deleted or it is not ours.
	if _, err := s.find(ctx, userID, taskID); err != nil {
		return err
	}
	return nil
}

// Restore brings a task back from the recycle bin as pending.
func (s *TaskService) Restore(ctx context.Context, userID, taskID string) (model.Task, error) {
	if !validID(taskID) {
		return model.Task{}, ErrNotFound
	}
	task, err := s.repo.Transition(ctx, userID, taskID,
		[]model.TaskStatus{model.TaskStatusDeleted}, model.TaskStatusPending)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Task{}, fmt.Errorf("failed to restore task: %w", err)
	}
	return model.Task{}, s.notDeleted(ctx, userID, taskID)
}

// PermanentlyDelete removes a task from the recycle bin for good.
func (s *TaskService) PermanentlyDelete(ctx context.Context, userID, taskID string) error {
	if !validID(taskID) {
		return ErrNotFound
	}
	err := s.repo.DeletePermanently(ctx, userID, taskID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to permanently delete task: %w", err)
	}
	return s.notDeleted(ctx, userID, taskID)
}

// BatchUpdate sets priority and/or category on every listed task. The batch
// is rejected unless the caller owns all of them.
func (s *TaskService) BatchUpdate(ctx context.Context, userID string, input BatchUpdateInput) (int, error) {
	patch := model.TaskBatchPatch{Priority: input.Priority, CategoryID: input.CategoryID}
	if patch.IsEmpty() {
		return 0, fmt.Errorf("%w: nothing to update, expected priority or category_id", ErrInvalidInput)
	}
	if patch.Priority.Set && !patch.Priority.Value.IsValid() {
		return 0, fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, patch.Priority.Value)
	}
	if patch.CategoryID.Set {
		if err := s.checkCategory(ctx, userID, patch.CategoryID.Value); err != nil {
			return 0, err
		}
	}

	ids, err := s.ownedBatch(ctx, userID, input.TaskIDs)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.BatchUpdate(ctx, userID, ids, patch)
	if err != nil {
		return 0, fmt.Errorf("failed to batch update tasks: %w", err)
	}
	return n, nil
}

// BatchSoftDelete moves every listed live task to the recycle bin and
// returns how many were moved.
func (s *TaskService) BatchSoftDelete(ctx context.Context, userID string, taskIDs []string) (int, error) {
	ids, err := s.ownedBatch(ctx, userID, taskIDs)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.BatchTransition(ctx, userID, ids, liveStatuses, model.TaskStatusDeleted)
	if err != nil {
		return 0, fmt.Errorf("failed to batch delete tasks: %w", err)
	}
	return n, nil
}

// ownedBatch de-duplicates ids and checks the caller owns each of them.
func (s *TaskService) ownedBatch(ctx context.Context, userID string, taskIDs []string) ([]string, error) {
	if len(taskIDs) == 0 {
		return nil, fmt.Errorf("%w: task_ids is required", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(taskIDs))
	ids := make([]string, 0, len(taskIDs))
	for _, id := range taskIDs {
		if !validID(id) {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	owned, err := s.repo.CountOwned(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify task ownership: %w", err)
	}
	if owned != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d tasks", ErrNotFound, len(ids)-owned, len(ids))
	}
	return ids, nil
}

// find loads an owned task in any status.
func (s *TaskService) find(ctx context.Context, userID, taskID string) (model.Task, error) {
	if !validID(taskID) {
		return model.Task{}, ErrNotFound
	}
	task, err := s.repo.GetByID(ctx, userID, taskID)
	if err != nil {
		return model.Task{}, lookupErr(err, "get task")
	}
	return task, nil
}

// notDeleted explains why a recycle-bin operation matched nothing.
func (s *TaskService) notDeleted(ctx context.Context, userID, taskID string) error {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: task is %s, not deleted", ErrInvalidState, task.Status)
}

func (s *TaskService) checkCategory(ctx context.Context, userID string, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	if !validID(*categoryID) {
		return fmt.Errorf("%w: category %s does not exist", ErrInvalidReference, *categoryID)
	}
	if _, err := s.categories.GetByID(ctx, userID, *categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: category %s does not exist", ErrInvalidReference, *categoryID)
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}
