package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListGameOpportunityRequest struct {
	pagination.Pagination
}

type ListGameOpportunityResponse struct {
	pagination.PageInfo
	Opportunities []GameOpportunityView `json:"opportunities"`
}

type CreateGameOpportunityRequest struct {
	InvoiceID string `json:"invoice_id"`
}

type UpdateGameOpportunityRequest struct {
	ID     string  `json:"-"`
	Gift   *string `json:"gift"`
	Active *bool   `json:"active"`
	UsedAt *string `json:"used_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateGameOpportunityRequest) (GameOpportunity, error)
	List(ctx context.Context, req ListGameOpportunityRequest) (ListGameOpportunityResponse, error)
	GetByID(ctx context.Context, id string) (GameOpportunityView, error)
	Update(ctx context.Context, req UpdateGameOpportunityRequest) (GameOpportunity, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidUsedAt = errors.New("invalid_used_at")
	ErrNotFound      = errors.New("not_found")
)
