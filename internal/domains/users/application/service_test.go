package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greenthumb/nursery-api/internal/domains/users/adapters/memory"
	"github.com/greenthumb/nursery-api/internal/domains/users/domain"
	"github.com/greenthumb/nursery-api/internal/domains/users/ports"
)

type userFixture struct {
	svc      *Service
	sessions *memory.SessionStore
	now      time.Time
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		sessions: memory.NewSessionStore(),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(memory.NewRepository(), f.sessions, WithClock(func() time.Time { return f.now }))
	return f
}

func TestCreateUser_GeneratesMissingIDs(t *testing.T) {
	f := newUserFixture(t)

	user, err := domain.NewUser("", "", "", domain.RoleCustomer)
	require.Error(t, err)
	require.Nil(t, user)

	u := &domain.User{}
	require.NoError(t, u.SetUsername("daisy_fan"))
	require.NoError(t, u.SetRole(domain.RoleCustomer))
	require.NoError(t, u.SetPassword("gard3ning"))

	saved, err := f.svc.CreateUser(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.NotEmpty(t, saved.CustomerID, "customer accounts must carry a customer id")
}

func TestRegisterCustomer_BuildsCustomerVariant(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "12 Greenhouse Lane")
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, user.Role)
	require.NotEmpty(t, user.CustomerID)
	require.NotEmpty(t, user.PasswordHash)
	require.True(t, user.CheckPassword("gard3ning"))
}

func TestRegisterCustomer_RejectsBadEmail(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "not-an-email", "", "")
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestLogin_IssuesSessionToken(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	token, err := f.svc.Login(context.Background(), "daisy_fan", "gard3ning")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "daisy_fan", user.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "daisy_fan", "wrong")
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestLogin_UnknownUserMasksNotFound(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.Login(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	token, err := f.svc.Login(context.Background(), "daisy_fan", "gard3ning")
	require.NoError(t, err)

	f.now = f.now.Add(DefaultSessionTTL + time.Minute)
	_, err = f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	token, err := f.svc.Login(context.Background(), "daisy_fan", "gard3ning")
	require.NoError(t, err)

	f.svc.Logout(context.Background(), "daisy_fan")
	_, err = f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestChangePassword_InvalidatesSessions(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	token, err := f.svc.Login(context.Background(), "daisy_fan", "gard3ning")
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), "daisy_fan", "gard3ning", "n3wsecret")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "daisy_fan", "gard3ning")
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
	_, err = f.svc.Login(context.Background(), "daisy_fan", "n3wsecret")
	require.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), "daisy_fan", "wrong", "n3wsecret")
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestUpdate_KeepsHashWhenPasswordOmitted(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	updated := &domain.User{}
	require.NoError(t, updated.SetUsername("daisy_fan"))
	require.NoError(t, updated.SetRole(domain.RoleCustomer))
	require.NoError(t, updated.UpdateContact("new@example.com", ""))

	saved, err := f.svc.Update(context.Background(), "daisy_fan", updated)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", saved.Email)
	require.True(t, saved.CheckPassword("gard3ning"), "omitted password keeps the stored hash")
}

func TestListByRole_RejectsUnknownRole(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.ListByRole(context.Background(), domain.Role("Gardener"))
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestListByRole_FiltersVariants(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.RegisterCustomer(context.Background(), "daisy_fan", "gard3ning", "daisy@example.com", "", "")
	require.NoError(t, err)

	staff, err := domain.NewUser("user_staff", "head_gardener", "s3cret99", domain.RoleStaff)
	require.NoError(t, err)
	_, err = f.svc.CreateUser(context.Background(), staff)
	require.NoError(t, err)

	customers, err := f.svc.ListByRole(context.Background(), domain.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Equal(t, "daisy_fan", customers[0].Username)
}
