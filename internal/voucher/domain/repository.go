package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, voucher *Voucher) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Voucher, error)
	List(ctx context.Context, db *gorm.DB, filter ListVoucherFilter, page pagination.Pagination) ([]*Voucher, error)
	ListDrawn(ctx context.Context, db *gorm.DB) ([]*DrawnVoucher, error)
	Update(ctx context.Context, db *gorm.DB, voucher *Voucher) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
