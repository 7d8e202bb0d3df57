package domain

import (
	"errors"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "user logged in successfully"
	MessageSuccessGetMe          = "user retrieved successfully"
	MessageSuccessForgotPassword = "if the email is registered, a reset link has been sent"
	MessageSuccessResetPassword  = "password reset successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetMe          = "failed to retrieve user"
	MessageFailedForgotPassword = "failed to send reset link"
	MessageFailedResetPassword  = "failed to reset password"

	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenInvalid  = errors.New("reset link is invalid or has expired")
)

type (
	RegisterRequest struct {
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=8"`
		BusinessName string `json:"business_name" validate:"omitempty,max=200"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	UserResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
)
