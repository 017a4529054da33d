package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/geepos/geepos/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials. Unknown account,
// inactive account and wrong password all collapse into the same error so a
// failed login leaks nothing and never touches the stored session.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Employee, error) {
	emp, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !emp.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return emp, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, empID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, empID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
