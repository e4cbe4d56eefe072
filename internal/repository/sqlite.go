package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jaekwang-park/task-api/internal/model"
)

// OpenSQLite opens an embedded SQLite database through GORM and migrates the
// schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite allows a single writer, and every connection to ":memory:" is
	// its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&userRow{}, &categoryRow{}, &taskRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return db, nil
}

type taskRow struct {
	ID          string     `gorm:"primaryKey;size:36"`
	UserID      string     `gorm:"not null;index:idx_tasks_user_status,priority:1"`
	Title       string     `gorm:"not null"`
	Description string     `gorm:"not null;default:''"`
	Status      string     `gorm:"not null;size:16;index:idx_tasks_user_status,priority:2"`
	Priority    string     `gorm:"not null;size:16"`
	CategoryID  *string    `gorm:"size:36;index"`
	IsPublic    bool       `gorm:"not null;default:false"`
	DueAt       *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (taskRow) TableName() string {
	return "tasks"
}

func newTaskRow(t model.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CategoryID:  t.CategoryID,
		IsPublic:    t.IsPublic,
		DueAt:       utcPtr(t.DueAt),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (r taskRow) toModel() model.Task {
	return model.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Status:      model.TaskStatus(r.Status),
		Priority:    model.Priority(r.Priority),
		CategoryID:  r.CategoryID,
		IsPublic:    r.IsPublic,
		DueAt:       utcPtr(r.DueAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type categoryRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

func (categoryRow) TableName() string {
	return "categories"
}

func (r categoryRow) toModel() model.Category {
	return model.Category{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type userRow struct {
	ID              string `gorm:"primaryKey;size:36"`
	CognitoSub      string `gorm:"not null;uniqueIndex"`
	Email           string `gorm:"not null"`
	Nickname        string `gorm:"not null;default:''"`
	ProfileImageURL string `gorm:"not null;default:''"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (userRow) TableName() string {
	return "users"
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:              r.ID,
		CognitoSub:      r.CognitoSub,
		Email:           r.Email,
		Nickname:        r.Nickname,
		ProfileImageURL: r.ProfileImageURL,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// pageScope applies offset and, for a positive limit, limit.
func pageScope(page model.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page.Offset > 0 {
			db = db.Offset(page.Offset)
		}
		if page.Limit > 0 {
			db = db.Limit(page.Limit)
		}
		return db
	}
}
