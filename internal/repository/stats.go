package repository

import (
	"context"
	"time"

	"github.com/jaekwang-park/task-api/internal/model"
)

// StatsRepository runs the read-only aggregations behind the statistics
// views. "Open" means pending: not completed and not in the recycle bin.
// Day keys use model.DateLayout in UTC; ranges are [from, to).
type StatsRepository interface {
	CountByStatus(ctx context.Context, userID string) (map[model.TaskStatus]int, error)
	CountCreatedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error)
	CountCompletedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error)
	// CountOpenByCategory keys counts by category id; "" holds uncategorized tasks.
	CountOpenByCategory(ctx context.Context, userID string) (map[string]int, error)
	CountOpenByPriority(ctx context.Context, userID string) (map[model.Priority]int, error)
	CountOpenOverdue(ctx context.Context, userID string, now time.Time) (overdue, open int, err error)
}
