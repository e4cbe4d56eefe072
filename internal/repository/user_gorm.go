package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jaekwang-park/task-api/internal/model"
)

type GormUserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormUser(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db, now: time.Now}
}

func (r *GormUserRepository) GetOrCreate(ctx context.Context, cognitoSub, email string) (model.User, error) {
	now := r.now().UTC()
	row := userRow{
		ID:         uuid.NewString(),
		CognitoSub: cognitoSub,
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cognito_sub"}},
		DoUpdates: clause.AssignmentColumns([]string{"email"}),
	}).Create(&row).Error
	if err != nil {
		return model.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return r.GetByCognitoSub(ctx, cognitoSub)
}

func (r *GormUserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	return r.first(ctx, "cognito_sub = ?", cognitoSub)
}

func (r *GormUserRepository) GetByID(ctx context.Context, userID string) (model.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *GormUserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	res := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"nickname":          user.Nickname,
			"profile_image_url": user.ProfileImageURL,
			"updated_at":        r.now().UTC(),
		})
	if res.Error != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.User{}, ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...any) (model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel(), nil
}

var _ UserRepository = (*GormUserRepository)(nil)
