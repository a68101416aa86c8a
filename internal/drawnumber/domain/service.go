package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListDrawNumberRequest struct {
	pagination.Pagination
}

type ListDrawNumberResponse struct {
	pagination.PageInfo
	DrawNumbers []DrawNumberView `json:"draw_numbers"`
}

type CreateDrawNumberRequest struct {
	InvoiceID string `json:"invoice_id"`
	Number    int64  `json:"number"`
}

type UpdateDrawNumberRequest struct {
	ID          string  `json:"-"`
	Number      *int64  `json:"number"`
	Active      *bool   `json:"active"`
	WinnerAt    *string `json:"winner_at"`
	EmailSentAt *string `json:"email_sent_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateDrawNumberRequest) (DrawNumber, error)
	List(ctx context.Context, req ListDrawNumberRequest) (ListDrawNumberResponse, error)
	GetByID(ctx context.Context, id string) (DrawNumberView, error)
	Update(ctx context.Context, req UpdateDrawNumberRequest) (DrawNumber, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidNumber    = errors.New("invalid_number")
	ErrInvalidTimestamp = errors.New("invalid_timestamp")
	ErrDuplicateNumber  = errors.New("duplicate_number")
	ErrNotFound         = errors.New("not_found")
)
