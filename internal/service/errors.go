package service

import (
	"errors"
	"fmt"

	"github.com/jaekwang-park/task-api/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidState     = errors.New("invalid state")
)

// lookupErr converts a repository miss into ErrNotFound and wraps anything
// else with the failed operation.
func lookupErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
