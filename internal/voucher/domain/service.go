package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListVoucherRequest struct {
	pagination.Pagination
	Coupom  string
	Claimed *bool
}

type ListVoucherFilter struct {
	Coupom  string
	Claimed *bool
}

type ListVoucherResponse struct {
	pagination.PageInfo
	Vouchers []Voucher `json:"vouchers"`
}

type CreateVoucherRequest struct {
	Coupom       string  `json:"coupom"`
	DrawDate     string  `json:"drawDate"`
	VoucherValue float64 `json:"voucherValue"`
}

type UpdateVoucherRequest struct {
	ID           string   `json:"-"`
	Coupom       *string  `json:"coupom"`
	DrawDate     *string  `json:"drawDate"`
	VoucherValue *float64 `json:"voucherValue"`
}

type Service interface {
	Create(ctx context.Context, req CreateVoucherRequest) (Voucher, error)
	List(ctx context.Context, req ListVoucherRequest) (ListVoucherResponse, error)
	GetByID(ctx context.Context, id string) (Voucher, error)
	Update(ctx context.Context, req UpdateVoucherRequest) (Voucher, error)
	Delete(ctx context.Context, id string) error
	ListDrawn(ctx context.Context) ([]DrawnVoucher, error)
}

var (
	ErrInvalidCoupom   = errors.New("invalid_coupom")
	ErrInvalidDrawDate = errors.New("invalid_draw_date")
	ErrInvalidValue    = errors.New("invalid_value")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
