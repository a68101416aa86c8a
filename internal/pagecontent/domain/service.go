package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListPageContentRequest struct {
	pagination.Pagination
	Slug   string
	Active *bool
}

type ListPageContentFilter struct {
	Slug   string
	Active *bool
}

type ListPageContentResponse struct {
	pagination.PageInfo
	Pages []PageContent `json:"pages"`
}

type CreatePageContentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Active  *bool  `json:"active"`
}

type UpdatePageContentRequest struct {
	ID      string  `json:"-"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Active  *bool   `json:"active"`
}

type Service interface {
	Create(ctx context.Context, req CreatePageContentRequest) (PageContent, error)
	List(ctx context.Context, req ListPageContentRequest) (ListPageContentResponse, error)
	GetByID(ctx context.Context, id string) (PageContent, error)
	GetBySlug(ctx context.Context, slug string) (PageContent, error)
	Update(ctx context.Context, req UpdatePageContentRequest) (PageContent, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidSlug   = errors.New("invalid_slug")
	ErrDuplicateSlug = errors.New("duplicate_slug")
	ErrNotFound      = errors.New("not_found")
)
