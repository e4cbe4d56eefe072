package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaekwang-park/task-api/internal/config"
	"github.com/jaekwang-park/task-api/internal/http/handler"
	"github.com/jaekwang-park/task-api/internal/middleware"
	"github.com/jaekwang-park/task-api/internal/repository"
)

// storage is the set of repositories backing one configured store.
type storage struct {
	tasks      repository.TaskRepository
	categories repository.CategoryRepository
	stats      repository.StatsRepository
	users      repository.UserRepository
	pinger     handler.Pinger
	close      func() error
}

// openStorage connects to the store named by cfg.Storage. SQLite migrates
// itself on open; PostgreSQL only when migrate is set.
func openStorage(ctx context.Context, cfg config.Config, migrate bool) (*storage, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		slog.Info("database connected", "storage", cfg.Storage, "path", cfg.SQLitePath)
		return &storage{
			tasks:      repository.NewGormTask(db),
			categories: repository.NewGormCategory(db),
			stats:      repository.NewGormStats(db),
			users:      repository.NewGormUser(db),
			pinger:     sqlDB,
			close:      sqlDB.Close,
		}, nil

	case config.StoragePostgres:
		db, err := repository.NewDB(cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := repository.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		slog.Info("database connected", "storage", cfg.Storage, "host", cfg.DB.Host)
		return &storage{
			tasks:      repository.NewPostgresTask(db),
			categories: repository.NewPostgresCategory(db),
			stats:      repository.NewPostgresStats(db),
			users:      repository.NewPostgresUser(db),
			pinger:     db,
			close:      db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
}

// userResolverAdapter adapts a user repository to the middleware.UserResolver interface.
type userResolverAdapter struct {
	repo repository.UserRepository
}

func (a *userResolverAdapter) ResolveUserID(ctx context.Context, cognitoSub string) (string, error) {
	user, err := a.repo.GetByCognitoSub(ctx, cognitoSub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", middleware.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, nil
}
