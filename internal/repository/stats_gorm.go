package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jaekwang-park/task-api/internal/model"
)

type GormStatsRepository struct {
	db *gorm.DB
}

func NewGormStats(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

type groupCount struct {
	Grp string
	N   int
}

func (r *GormStatsRepository) CountByStatus(ctx context.Context, userID string) (map[model.TaskStatus]int, error) {
	groups, err := r.group(r.owned(ctx, userID), "status")
	if err != nil {
		return nil, err
	}
	out := make(map[model.TaskStatus]int, len(groups))
	for _, g := range groups {
		out[model.TaskStatus(g.Grp)] = g.N
	}
	return out, nil
}

func (r *GormStatsRepository) CountCreatedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	q := r.owned(ctx, userID).Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC())
	return r.bucketByDay(q, "created_at")
}

func (r *GormStatsRepository) CountCompletedByDay(ctx context.Context, userID string, from, to time.Time) (map[string]int, error) {
	q := r.owned(ctx, userID).
		Where("status = ?", string(model.TaskStatusCompleted)).
		Where("updated_at >= ? AND updated_at < ?", from.UTC(), to.UTC())
	return r.bucketByDay(q, "updated_at")
}

func (r *GormStatsRepository) CountOpenByCategory(ctx context.Context, userID string) (map[string]int, error) {
	groups, err := r.group(r.open(ctx, userID), "COALESCE(category_id, '')")
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(groups))
	for _, g := range groups {
		out[g.Grp] = g.N
	}
	return out, nil
}

func (r *GormStatsRepository) CountOpenByPriority(ctx context.Context, userID string) (map[model.Priority]int, error) {
	groups, err := r.group(r.open(ctx, userID), "priority")
	if err != nil {
		return nil, err
	}
	out := make(map[model.Priority]int, len(groups))
	for _, g := range groups {
		out[model.Priority(g.Grp)] = g.N
	}
	return out, nil
}

func (r *GormStatsRepository) CountOpenOverdue(ctx context.Context, userID string, now time.Time) (int, int, error) {
	var open, overdue int64
	if err := r.open(ctx, userID).Count(&open).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count open tasks: %w", err)
	}
	err := r.open(ctx, userID).
		Where("due_at IS NOT NULL AND due_at < ?", now.UTC()).
		Count(&overdue).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return int(overdue), int(open), nil
}

func (r *GormStatsRepository) owned(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&taskRow{}).Where("user_id = ?", userID)
}

func (r *GormStatsRepository) open(ctx context.Context, userID string) *gorm.DB {
	return r.owned(ctx, userID).Where("status = ?", string(model.TaskStatusPending))
}

func (r *GormStatsRepository) group(q *gorm.DB, expr string) ([]groupCount, error) {
	var groups []groupCount
	err := q.Select(expr + " AS grp, count(*) AS n").Group("grp").Scan(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks: %w", err)
	}
	return groups, nil
}

// bucketByDay loads the matching timestamps and counts them per UTC day.
// SQLite has no native date type, so the grouping happens here.
func (r *GormStatsRepository) bucketByDay(q *gorm.DB, column string) (map[string]int, error) {
	var stamps []time.Time
	if err := q.Pluck(column, &stamps).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", column, err)
	}
	out := make(map[string]int)
	for _, ts := range stamps {
		out[ts.UTC().Format(model.DateLayout)]++
	}
	return out, nil
}

var _ StatsRepository = (*GormStatsRepository)(nil)
