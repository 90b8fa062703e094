package ports

import (
	"context"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

type AuthService interface {
	SignUp(ctx context.Context, username, email, password, role string) (*domain.Identity, error)
	SignIn(ctx context.Context, email, password, role string) (string, *domain.Identity, error)
}
