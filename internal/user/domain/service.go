package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListUserRequest struct {
	pagination.Pagination
	Username string
	Email    string
}

type ListUserFilter struct {
	Username string
	Email    string
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	ID       string  `json:"-"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	List(ctx context.Context, req ListUserRequest) (ListUserResponse, error)
	GetByID(ctx context.Context, id string) (User, error)
	Update(ctx context.Context, req UpdateUserRequest) (User, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrInvalidID       = errors.New("invalid_id")
	ErrDuplicateUser   = errors.New("duplicate_user")
	ErrRoleNotFound    = errors.New("role_not_found")
	ErrNotFound        = errors.New("not_found")
)
