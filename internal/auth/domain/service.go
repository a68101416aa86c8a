package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// WebLoginRequest binds a CPF to a per-device security token. A
// mismatching token triggers the device-authorization email flow.
type WebLoginRequest struct {
	CPF           string `json:"cpf" binding:"required"`
	SecurityToken string `json:"security_token" binding:"required"`
	IP            string `json:"-"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UpdateSecurityTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	WebLogin(ctx context.Context, req WebLoginRequest) (TokenResponse, error)
	UpdateSecurityToken(ctx context.Context, req UpdateSecurityTokenRequest) error
}

var (
	ErrDuplicateUser      = errors.New("duplicate_user")
	ErrRoleNotFound       = errors.New("role_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidCPF         = errors.New("invalid_cpf")
	ErrIncompleteData     = errors.New("incomplete_data")
	ErrRateLimited        = errors.New("rate_limited")
	ErrSecurityEmailSent  = errors.New("security_email_already_sent")
	ErrDifferentDevice    = errors.New("different_device")
	ErrInvalidBundle      = errors.New("invalid_bundle")
	ErrExpiredBundle      = errors.New("expired_bundle")
	ErrClientNotFound     = errors.New("client_not_found")
)
