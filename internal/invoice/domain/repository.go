package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InvoiceView, error)
	FindByFiscalCode(ctx context.Context, db *gorm.DB, fiscalCode string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*InvoiceView, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error)
}
