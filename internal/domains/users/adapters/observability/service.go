package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/greenthumb/nursery-api/internal/domains/users/domain"
	userports "github.com/greenthumb/nursery-api/internal/domains/users/ports"
)

const tracerName = "github.com/greenthumb/nursery-api/internal/domains/users/adapters/observability/service"

var _ userports.Service = (*Service)(nil)

// Service decorates the users service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core users service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, user *userdomain.User) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CreateUser",
		trace.WithAttributes(attribute.String("user.role", string(user.Role))))
	defer span.End()

	result, err := s.inner.CreateUser(ctx, user)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create user", slog.String("username", user.Username))
	}
	s.metrics.recordCreated(ctx, result.Role)
	s.logInfo(ctx, "user created", slog.String("username", result.Username), slog.String("role", string(result.Role)))
	return result, nil
}

func (s *Service) RegisterCustomer(ctx context.Context, username, password, email, phone, address string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.RegisterCustomer")
	defer span.End()

	result, err := s.inner.RegisterCustomer(ctx, username, password, email, phone, address)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register customer", slog.String("username", username))
	}
	s.metrics.recordCreated(ctx, result.Role)
	s.logInfo(ctx, "customer registered",
		slog.String("username", result.Username), slog.String("customer_id", result.CustomerID))
	return result, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByUsername")
	defer span.End()

	result, err := s.inner.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.String("username", username))
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, username string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete")
	defer span.End()

	if err := s.inner.Delete(ctx, username); err != nil {
		return s.handleError(ctx, span, err, "failed to delete user", slog.String("username", username))
	}
	s.logInfo(ctx, "user deleted", slog.String("username", username))
	return nil
}

func (s *Service) Update(ctx context.Context, username string, updated *userdomain.User) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Update")
	defer span.End()

	result, err := s.inner.Update(ctx, username, updated)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update user", slog.String("username", username))
	}
	s.logInfo(ctx, "user updated", slog.String("username", result.Username))
	return result, nil
}

func (s *Service) List(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()

	result, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("users.count", len(result)))
	return result, nil
}

func (s *Service) ListByRole(ctx context.Context, role userdomain.Role) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListByRole",
		trace.WithAttributes(attribute.String("user.role", string(role))))
	defer span.End()

	result, err := s.inner.ListByRole(ctx, role)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users by role", slog.String("role", string(role)))
	}
	span.SetAttributes(attribute.Int("users.count", len(result)))
	return result, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	token, err := s.inner.Login(ctx, username, password)
	if err != nil {
		s.metrics.recordLogin(ctx, false)
		return "", s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx, true)
	s.logInfo(ctx, "user logged in", slog.String("username", username))
	return token, nil
}

func (s *Service) Logout(ctx context.Context, username string) {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()

	s.inner.Logout(ctx, username)
	s.logInfo(ctx, "user logged out", slog.String("username", username))
}

func (s *Service) Authenticate(ctx context.Context, token string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	result, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "authentication failed")
	}
	return result, nil
}

func (s *Service) ChangePassword(ctx context.Context, username, current, updated string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.ChangePassword")
	defer span.End()

	if err := s.inner.ChangePassword(ctx, username, current, updated); err != nil {
		return s.handleError(ctx, span, err, "failed to change password", slog.String("username", username))
	}
	s.logInfo(ctx, "password changed", slog.String("username", username))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	usersCreated metric.Int64Counter
	logins       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	usersCreated, _ := m.Int64Counter("users.service.users_created",
		metric.WithDescription("Number of users created"))
	logins, _ := m.Int64Counter("users.service.logins",
		metric.WithDescription("Number of login attempts"))
	return serviceMetrics{usersCreated: usersCreated, logins: logins}
}

func (m serviceMetrics) recordCreated(ctx context.Context, role userdomain.Role) {
	if m.usersCreated != nil {
		m.usersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", string(role))))
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context, success bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("login.success", success)))
	}
}
