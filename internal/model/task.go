package model

import (
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusDeleted   TaskStatus = "deleted"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusDeleted:
		return true
	}
	return false
}

// transitions lists the statuses reachable from each status. Leaving the
// recycle bin is only possible by going back to pending.
var transitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:   {TaskStatusCompleted, TaskStatusDeleted},
	TaskStatusCompleted: {TaskStatusPending, TaskStatusDeleted},
	TaskStatusDeleted:   {TaskStatusPending},
}

// CanTransitionTo reports whether a task in status s may move to next.
// Staying in the same status is always allowed.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return s.IsValid()
	}
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// DefaultListStatuses is the status set used by task listings when the caller
// does not ask for specific statuses: everything outside the recycle bin.
func DefaultListStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusCompleted}
}

// ParseStatuses parses a comma-separated status list such as "pending,deleted".
// Blank entries are ignored and duplicates collapsed.
func ParseStatuses(s string) ([]TaskStatus, error) {
	var out []TaskStatus
	seen := make(map[TaskStatus]bool)
	for _, part := range strings.Split(s, ",") {
		status := TaskStatus(strings.ToLower(strings.TrimSpace(part)))
		if status == "" {
			continue
		}
		if !status.IsValid() {
			return nil, fmt.Errorf("unknown status %q", part)
		}
		if !seen[status] {
			seen[status] = true
			out = append(out, status)
		}
	}
	return out, nil
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Priorities returns every priority, highest first. Aggregations iterate this
// list so each bucket is present even when no task uses it.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	CategoryID  *string    `json:"category_id"`
	IsPublic    bool       `json:"is_public"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskPatch carries a partial update. Only fields marked as set are applied.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueAt       Optional[*time.Time]
	Priority    Optional[Priority]
	Status      Optional[TaskStatus]
	CategoryID  Optional[*string]
	IsPublic    Optional[bool]
}

// Apply merges the set fields of p into t and returns the result.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.DueAt.Set {
		t.DueAt = p.DueAt.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.CategoryID.Set {
		t.CategoryID = p.CategoryID.Value
	}
	if p.IsPublic.Set {
		t.IsPublic = p.IsPublic.Value
	}
	return t
}

// TaskBatchPatch is the restricted field set a batch update may touch.
type TaskBatchPatch struct {
	Priority   Optional[Priority]
	CategoryID Optional[*string]
}

func (p TaskBatchPatch) IsEmpty() bool {
	return !p.Priority.Set && !p.CategoryID.Set
}

// CategoryFilter narrows a listing to one category. With Apply set and a nil
// CategoryID only uncategorized tasks match.
type CategoryFilter struct {
	Apply      bool
	CategoryID *string
}

type Page struct {
	Offset int
	Limit  int
}

type TaskListParams struct {
	UserID   string
	Statuses []TaskStatus
	Priority *Priority
	Category CategoryFilter
	Page     Page
}

type TaskListResult struct {
	Tasks  []Task `json:"tasks"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}
