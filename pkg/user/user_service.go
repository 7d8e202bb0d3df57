package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/internal/utils/mailing"
	"lifecycle/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenLifetime = 30 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		mailer         mailing.Mailer
		appURL         string
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, mailer mailing.Mailer, appURL string) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		mailer:         mailer,
		appURL:         appURL,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		return domain.UserResponse{}, domain.ErrEmailAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := &entities.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
	}
	profile := &entities.Profile{
		ID:           user.ID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		Email:        email,
	}
	settings := &entities.Settings{
		ID:             uuid.New(),
		UserID:         user.ID,
		AlertThreshold: domain.DefaultAlertThreshold,
	}

	if err := s.userRepository.CreateUser(ctx, user, profile, settings); err != nil {
		return domain.UserResponse{}, err
	}

	return domain.UserResponse{ID: user.ID.String(), Email: user.Email}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	return domain.LoginResponse{
		Token:  s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser),
		UserID: user.ID.String(),
		Email:  user.Email,
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return domain.UserResponse{ID: user.ID.String(), Email: user.Email}, nil
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently so
// the endpoint cannot be used to enumerate accounts.
func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"purpose": "reset",
	}, resetTokenLifetime)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.appURL, "/"), token)
	body := fmt.Sprintf(
		"<p>We received a request to reset your LifeCycle password.</p>"+
			"<p><a href=\"%s\">Reset password</a></p>"+
			"<p>The link expires in 30 minutes. If you did not ask for this, ignore this email.</p>", link)

	if err := s.mailer.SendMail(user.Email, "Reset your LifeCycle password", body); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to send reset mail")
		return err
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}
	if purpose, _ := claims["purpose"].(string); purpose != "reset" {
		return domain.ErrResetTokenInvalid
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return domain.ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, userID, string(hashed))
}
