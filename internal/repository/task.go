package repository

import (
	"context"
	"errors"

	"github.com/jaekwang-park/task-api/internal/model"
)

// ErrNotFound is returned when no row matches the owner-scoped lookup.
var ErrNotFound = errors.New("record not found")

// TaskRepository stores tasks. Every method except GetPublic and ListPublic
// is scoped to the owning user. Reads return tasks of any status unless a
// status filter says otherwise; hiding the recycle bin is a caller decision.
type TaskRepository interface {
	Create(ctx context.Context, task model.Task) (model.Task, error)
	GetByID(ctx context.Context, userID, taskID string) (model.Task, error)
	GetPublic(ctx context.Context, taskID string) (model.Task, error)
	Update(ctx context.Context, task model.Task) (model.Task, error)
	// Transition moves a task to status to, provided its current status is
	// one of from. Returns ErrNotFound when no such task exists.
	Transition(ctx context.Context, userID, taskID string, from []model.TaskStatus, to model.TaskStatus) (model.Task, error)
	// DeletePermanently removes a task that is in the recycle bin.
	DeletePermanently(ctx context.Context, userID, taskID string) error
	// List returns matching tasks, newest first. A zero Page.Limit is unbounded.
	List(ctx context.Context, params model.TaskListParams) ([]model.Task, error)
	ListPublic(ctx context.Context, page model.Page) ([]model.Task, error)
	CountOwned(ctx context.Context, userID string, taskIDs []string) (int, error)
	BatchUpdate(ctx context.Context, userID string, taskIDs []string, patch model.TaskBatchPatch) (int, error)
	BatchTransition(ctx context.Context, userID string, taskIDs []string, from []model.TaskStatus, to model.TaskStatus) (int, error)
}

func statusStrings(statuses []model.TaskStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
