package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, number *DrawNumber) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DrawNumberView, error)
	ExistsNumber(ctx context.Context, db *gorm.DB, number int64) (bool, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*DrawNumberView, error)
	Update(ctx context.Context, db *gorm.DB, number *DrawNumber) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
