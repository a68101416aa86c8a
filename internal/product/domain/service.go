package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListProductRequest struct {
	pagination.Pagination
	EAN         string
	Description string
	Brand       string
}

type ListProductFilter struct {
	EAN         string
	Description string
	Brand       string
}

type ListProductResponse struct {
	pagination.PageInfo
	Products []Product `json:"products"`
}

type CreateProductRequest struct {
	EAN         string `json:"ean"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
}

type UpdateProductRequest struct {
	ID          string  `json:"-"`
	EAN         *string `json:"ean"`
	Description *string `json:"description"`
	Brand       *string `json:"brand"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	List(ctx context.Context, req ListProductRequest) (ListProductResponse, error)
	GetByID(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (Product, error)
	Delete(ctx context.Context, id string) error
	ExistsAnyEAN(ctx context.Context, eans []string) (bool, error)
}

var (
	ErrInvalidEAN       = errors.New("invalid_ean")
	ErrInvalidID        = errors.New("invalid_id")
	ErrDuplicateEAN     = errors.New("duplicate_ean")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
