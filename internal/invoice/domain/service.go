package domain

import (
	"context"
	"errors"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	pagination.Pagination
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceView `json:"invoices"`
}

// CreateInvoiceRequest carries the explicit admin create path where
// every derived field is supplied by the caller.
type CreateInvoiceRequest struct {
	FiscalCode     string  `json:"fiscal_code" binding:"required"`
	InvoiceValue   float64 `json:"invoice_value"`
	HasItem        bool    `json:"has_item"`
	HasCreditcard  bool    `json:"has_creditcard"`
	HasPartnerCode bool    `json:"has_partner_code"`
	PDV            string  `json:"pdv"`
	Store          string  `json:"store"`
	NumCoupon      string  `json:"num_coupon"`
	CNPJ           string  `json:"cnpj"`
	Creditcard     string  `json:"creditcard"`
	ClientID       string  `json:"client_id" binding:"required"`
}

// AddInvoiceRequest is the web-role path: only the fiscal code comes
// from the caller, everything else is derived from the sales API.
type AddInvoiceRequest struct {
	FiscalCode string `json:"fiscal_code" binding:"required"`
	ClientID   string `json:"-"`
}

// AddInvoiceResult reports how many chances the invoice earned and the
// draw numbers handed out for them.
type AddInvoiceResult struct {
	Invoice     Invoice `json:"invoice"`
	Chances     int     `json:"chances"`
	DrawNumbers []int64 `json:"draw_numbers"`
}

type UpdateInvoiceRequest struct {
	ID         string  `json:"-"`
	FiscalCode *string `json:"fiscal_code"`
	Store      *string `json:"store"`
	PDV        *string `json:"pdv"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	AddFromFiscalCode(ctx context.Context, req AddInvoiceRequest) (AddInvoiceResult, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceView, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidFiscalCode   = errors.New("invalid_fiscal_code")
	ErrDuplicateFiscalCode = errors.New("duplicate_fiscal_code")
	ErrBelowMinimumValue   = errors.New("below_minimum_value")
	ErrSalesUnavailable    = errors.New("sales_unavailable")
	ErrDrawNumberExhausted = errors.New("draw_number_exhausted")
	ErrClientNotFound      = errors.New("client_not_found")
	ErrNotFound            = errors.New("not_found")
)
