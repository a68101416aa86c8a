package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	FindByCPF(ctx context.Context, db *gorm.DB, cpf string) (*Client, error)
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Client, error)
	FindByTokenAndSecurityToken(ctx context.Context, db *gorm.DB, token, securityToken string) (*Client, error)
	List(ctx context.Context, db *gorm.DB, filter ListClientFilter, page pagination.Pagination) ([]*Client, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	UpdateSecurityToken(ctx context.Context, db *gorm.DB, id snowflake.ID, securityToken string) error
	StampSecurityEmailSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	StampWelcomeEmailSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Summary(ctx context.Context, db *gorm.DB, token string) (*WebSummary, error)
}
