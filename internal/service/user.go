package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/repository"
)

const maxNicknameLength = 50

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Me(ctx context.Context, userID string) (model.User, error) {
	if !validID(userID) {
		return model.User{}, ErrNotFound
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, lookupErr(err, "get user")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) (model.User, error) {
	if patch.Nickname.Set && len([]rune(patch.Nickname.Value)) > maxNicknameLength {
		return model.User{}, fmt.Errorf("%w: nickname must be at most %d characters", ErrInvalidInput, maxNicknameLength)
	}
	if patch.ProfileImageURL.Set && patch.ProfileImageURL.Value != "" {
		u, err := url.Parse(patch.ProfileImageURL.Value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return model.User{}, fmt.Errorf("%w: profile_image_url must be an http(s) URL", ErrInvalidInput)
		}
	}

	existing, err := s.Me(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	updated, err := s.repo.Update(ctx, patch.Apply(existing))
	if err != nil {
		return model.User{}, lookupErr(err, "update user")
	}
	return updated, nil
}
