package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/repository"
)

const day = 24 * time.Hour

// StatsService derives the statistics views from the live task set. Nothing
// is cached; every call aggregates afresh.
type StatsService struct {
	stats      repository.StatsRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewStatsService builds the service. A nil now defaults to time.Now.
func NewStatsService(stats repository.StatsRepository, categories repository.CategoryRepository, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{stats: stats, categories: categories, now: now}
}

// rate returns part/total as a percentage rounded to two decimals, or 0 for
// an empty total.
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

// Completion counts tasks of every status, the recycle bin included.
func (s *StatsService) Completion(ctx context.Context, userID string) (model.CompletionStats, error) {
	counts, err := s.stats.CountByStatus(ctx, userID)
	if err != nil {
		return model.CompletionStats{}, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	out := model.CompletionStats{
		Completed: counts[model.TaskStatusCompleted],
		Pending:   counts[model.TaskStatusPending],
		Deleted:   counts[model.TaskStatusDeleted],
	}
	out.Total = out.Completed + out.Pending + out.Deleted
	out.CompletionRate = rate(out.Completed, out.Total)
	return out, nil
}

// Daily returns one entry per UTC day from today-days through today,
// oldest first, with days without activity zero-filled.
func (s *StatsService) Daily(ctx context.Context, userID string, days int) ([]model.DailyStat, error) {
	if days < 0 || days > model.MaxStatsDays {
		return nil, fmt.Errorf("%w: days must be between 0 and %d", ErrInvalidInput, model.MaxStatsDays)
	}

	today := s.now().UTC().Truncate(day)
	from := today.Add(-time.Duration(days) * day)
	to := today.Add(day)

	created, err := s.stats.CountCreatedByDay(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count created tasks: %w", err)
	}
	completed, err := s.stats.CountCompletedByDay(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	out := make([]model.DailyStat, 0, days+1)
	for d := from; d.Before(to); d = d.Add(day) {
		key := d.Format(model.DateLayout)
		out = append(out, model.DailyStat{
			Date:           key,
			CreatedCount:   created[key],
			CompletedCount: completed[key],
		})
	}
	return out, nil
}

// Categories counts open tasks per owned category, empty categories
// included, followed by the uncategorized bucket.
func (s *StatsService) Categories(ctx context.Context, userID string) ([]model.CategoryStat, error) {
	categories, err := s.categories.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	counts, err := s.stats.CountOpenByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by category: %w", err)
	}

	out := make([]model.CategoryStat, 0, len(categories)+1)
	for _, c := range categories {
		id := c.ID
		out = append(out, model.CategoryStat{
			CategoryID:   &id,
			CategoryName: c.Name,
			TaskCount:    counts[c.ID],
		})
	}
	out = append(out, model.CategoryStat{
		CategoryName: model.UncategorizedLabel,
		TaskCount:    counts[""],
	})
	return out, nil
}

// Priorities counts open tasks per priority. Every priority is present.
func (s *StatsService) Priorities(ctx context.Context, userID string) (model.PriorityStats, error) {
	counts, err := s.stats.CountOpenByPriority(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by priority: %w", err)
	}

	out := make(model.PriorityStats, len(model.Priorities()))
	for _, p := range model.Priorities() {
		out[p] = counts[p]
	}
	return out, nil
}

// Overdue counts open tasks whose due date has passed.
func (s *StatsService) Overdue(ctx context.Context, userID string) (model.OverdueStats, error) {
	overdue, open, err := s.stats.CountOpenOverdue(ctx, userID, s.now().UTC())
	if err != nil {
		return model.OverdueStats{}, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return model.OverdueStats{
		Overdue:     overdue,
		Total:       open,
		OverdueRate: rate(overdue, open),
	}, nil
}

// Summary computes all five views concurrently. The views are independent
// reads and may observe slightly different moments.
func (s *StatsService) Summary(ctx context.Context, userID string, days int) (model.StatsSummary, error) {
	if days < 0 || days > model.MaxStatsDays {
		return model.StatsSummary{}, fmt.Errorf("%w: days must be between 0 and %d", ErrInvalidInput, model.MaxStatsDays)
	}

	var out model.StatsSummary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Completion, err = s.Completion(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Daily, err = s.Daily(ctx, userID, days)
		return err
	})
	g.Go(func() (err error) {
		out.Categories, err = s.Categories(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Priorities, err = s.Priorities(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Overdue, err = s.Overdue(ctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return model.StatsSummary{}, err
	}
	return out, nil
}
