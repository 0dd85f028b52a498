package ports

import (
	"context"

	"github.com/billed/billed-app/internal/core/domain"
)

// AuthRepository defines the interface for user authentication persistence.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, email, password, userType string) (*domain.User, error)
	// Login checks the credentials for the requested account type and returns
	// a signed session token.
	Login(ctx context.Context, email, password, userType string) (string, *domain.User, error)
}
