package user

import (
	"context"
	"strings"
	"testing"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepository struct {
	users    map[string]*entities.User
	profiles []*entities.Profile
	settings []*entities.Settings
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]*entities.User{}}
}

func (m *mockUserRepository) CreateUser(_ context.Context, user *entities.User, profile *entities.Profile, settings *entities.Settings) error {
	m.users[user.ID.String()] = user
	m.profiles = append(m.profiles, profile)
	m.settings = append(m.settings, settings)
	return nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id string, hashed string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashed
	return nil
}

type sentMail struct {
	to, subject, body string
}

type mockMailer struct {
	sent []sentMail
}

func (m *mockMailer) SendMail(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func newTestService() (UserService, *mockUserRepository, *mockMailer) {
	repo := newMockUserRepository()
	mailer := &mockMailer{}
	return NewUserService(repo, jwt.NewJWTService("test-secret"), mailer, "https://app.example.com/"), repo, mailer
}

func TestRegisterCreatesProfileAndDefaultSettings(t *testing.T) {
	svc, repo, _ := newTestService()

	res, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:        " Shop@Example.com ",
		Password:     "password123",
		BusinessName: "Corner Shop",
	})
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", res.Email)

	require.Len(t, repo.profiles, 1)
	assert.Equal(t, "Corner Shop", repo.profiles[0].BusinessName)
	assert.Equal(t, res.ID, repo.profiles[0].ID.String())

	require.Len(t, repo.settings, 1)
	assert.False(t, repo.settings[0].DailyExpiryAlertsEnabled)
	assert.Equal(t, domain.DefaultAlertThreshold, repo.settings[0].AlertThreshold)
	assert.False(t, repo.settings[0].WeeklyReport)

	stored := repo.users[res.ID]
	assert.NotEqual(t, "password123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.co", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "A@B.co", Password: "password456"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.co", Password: "password123"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, res.UserID)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@b.co", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestMeUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Me(context.Background(), "2b1f7f3c-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestForgotPasswordUnknownEmailSendsNothing(t *testing.T) {
	svc, _, mailer := newTestService()

	err := svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{Email: "ghost@b.co"})
	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, _, mailer := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.co", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, domain.ForgotPasswordRequest{Email: "a@b.co"}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@b.co", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "https://app.example.com/reset-password?token=")

	body := mailer.sent[0].body
	start := strings.Index(body, "token=") + len("token=")
	end := strings.Index(body[start:], "\"")
	token := body[start : start+end]

	require.NoError(t, svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: token, Password: "new-password"}))

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "new-password"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResetPasswordRejectsSessionToken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.co", Password: "password123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, domain.LoginRequest{Email: "a@b.co", Password: "password123"})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: login.Token, Password: "new-password"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: "garbage", Password: "new-password"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}
