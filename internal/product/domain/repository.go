package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByEAN(ctx context.Context, db *gorm.DB, ean string) (*Product, error)
	CountByEANs(ctx context.Context, db *gorm.DB, eans []string) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListProductFilter, page pagination.Pagination) ([]*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
