package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)
}
