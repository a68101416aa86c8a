package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sortelabs/promo/pkg/db/pagination"
)

type ListClientRequest struct {
	pagination.Pagination
	Name        string
	CPF         string
	Cel         string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListClientFilter struct {
	Name        string
	CPF         string
	Cel         string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type CreateClientRequest struct {
	IsPreRegister bool   `json:"isPreRegister"`
	Name          string `json:"name"`
	CPF           string `json:"cpf"`
	Birthday      string `json:"birthday"`
	Cel           string `json:"cel"`
	Email         string `json:"email"`
}

type UpdateClientRequest struct {
	ID            string  `json:"-"`
	IsPreRegister *bool   `json:"isPreRegister"`
	Name          *string `json:"name"`
	CPF           *string `json:"cpf"`
	Birthday      *string `json:"birthday"`
	Cel           *string `json:"cel"`
	Email         *string `json:"email"`
}

type UpdateWebRequest struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
	Cel      string `json:"cel"`
	Email    string `json:"email"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	GetByID(ctx context.Context, id string) (Client, error)
	GetByCPF(ctx context.Context, cpf string) (Client, error)
	Update(ctx context.Context, req UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id string) error

	GetWebProfile(ctx context.Context, token string) (WebProfile, error)
	GetWebSummary(ctx context.Context, token string) (WebSummary, error)
	UpdateWeb(ctx context.Context, token string, req UpdateWebRequest) (WebProfile, error)
}

var (
	ErrInvalidCPF      = errors.New("invalid_cpf")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidBirthday = errors.New("invalid_birthday")
	ErrUnderage        = errors.New("underage")
	ErrDuplicateCPF    = errors.New("duplicate_cpf")
	ErrNotFound        = errors.New("not_found")
)
