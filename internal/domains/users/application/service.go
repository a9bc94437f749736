package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greenthumb/nursery-api/internal/domains/users/domain"
	"github.com/greenthumb/nursery-api/internal/domains/users/ports"
)

// DefaultSessionTTL bounds how long a login token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	if sessions == nil {
		sessions = ports.NoopSessionStore
	}
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if user.ID == "" {
		user.ID = newID("user")
	}
	if user.Role == domain.RoleCustomer && user.CustomerID == "" {
		user.CustomerID = newID("cust")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, user)
}

// RegisterCustomer is the self-service signup path: it builds the customer
// variant with a generated customer id and validated contact details.
func (s *Service) RegisterCustomer(ctx context.Context, username, password, email, phone, address string) (*domain.User, error) {
	user, err := domain.NewUser(newID("user"), username, password, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	user.CustomerID = newID("cust")
	if err := user.UpdateContact(email, phone); err != nil {
		return nil, err
	}
	if err := user.UpdateAddress(address); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, user)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) Delete(ctx context.Context, username string) error {
	_ = s.sessions.Delete(ctx, username)
	return s.repo.Delete(ctx, username)
}

func (s *Service) Update(ctx context.Context, username string, updated *domain.User) (*domain.User, error) {
	if updated == nil {
		return nil, errors.New("user is nil")
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CustomerID = existing.CustomerID
	if updated.PasswordHash == "" {
		updated.PasswordHash = existing.PasswordHash
	}
	if err := updated.SetUsername(username); err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, updated)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if !domain.IsValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	return s.repo.ListByRole(ctx, role)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "", ports.ErrInvalidCredentials
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", ports.ErrInvalidCredentials
		}
		return "", err
	}
	if !user.CheckPassword(password) {
		return "", ports.ErrInvalidCredentials
	}
	token := uuid.NewString()
	session := ports.Session{
		Token:     token,
		Username:  username,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, username string) {
	if strings.TrimSpace(username) == "" {
		return
	}
	_ = s.sessions.Delete(ctx, username)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ports.ErrInvalidCredentials
	}
	session, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ports.ErrInvalidCredentials
		}
		return nil, err
	}
	if session.ExpiresAt.Before(s.now()) {
		return nil, ports.ErrInvalidCredentials
	}
	return s.repo.GetByUsername(ctx, session.Username)
}

// ChangePassword verifies the current credentials before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, username, current, updated string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return ports.ErrInvalidCredentials
	}
	if err := user.SetPassword(updated); err != nil {
		return err
	}
	if _, err := s.repo.Save(ctx, user); err != nil {
		return err
	}
	_ = s.sessions.Delete(ctx, username)
	return nil
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

var _ ports.Service = (*Service)(nil)
