package model

// UncategorizedLabel names the category bucket of tasks without a category.
const UncategorizedLabel = "Uncategorized"

// MaxStatsDays bounds the look-back window of the daily view.
const MaxStatsDays = 366

// DateLayout is the UTC calendar-day key used by the daily view.
const DateLayout = "2006-01-02"

type CompletionStats struct {
	Total          int     `json:"total_tasks"`
	Completed      int     `json:"completed_tasks"`
	Pending        int     `json:"pending_tasks"`
	Deleted        int     `json:"deleted_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

type DailyStat struct {
	Date           string `json:"date"`
	CreatedCount   int    `json:"created_count"`
	CompletedCount int    `json:"completed_count"`
}

type CategoryStat struct {
	CategoryID   *string `json:"category_id"`
	CategoryName string  `json:"category_name"`
	TaskCount    int     `json:"task_count"`
}

type PriorityStats map[Priority]int

type OverdueStats struct {
	Overdue     int     `json:"overdue_tasks"`
	Total       int     `json:"total_tasks"`
	OverdueRate float64 `json:"overdue_rate"`
}

type StatsSummary struct {
	Completion CompletionStats `json:"completion_stats"`
	Daily      []DailyStat     `json:"daily_stats"`
	Categories []CategoryStat  `json:"category_stats"`
	Priorities PriorityStats   `json:"priority_stats"`
	Overdue    OverdueStats    `json:"overdue_stats"`
}
