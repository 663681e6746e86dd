package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smartdept/budget/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, u *User) error
}

type Service struct {
	repo   Repository
	tokens *auth.Manager
}

func NewService(repo Repository, tokens *auth.Manager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login checks credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID.String(), u.Name, string(u.Role))
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// Get loads the user behind a session identity, for example to render the
// current profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// TokenTTL reports how long issued session tokens stay valid.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
