package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) ports.UserService {
	return &UserService{
		repo: repo,
	}
}

// GetByID reports a missing user as unauthenticated: the only caller is a
// token whose subject no longer resolves.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PublicUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	view := user.PublicView()
	return &view, nil
}
