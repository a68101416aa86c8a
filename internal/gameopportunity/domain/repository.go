package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, opportunity *GameOpportunity) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*GameOpportunityView, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*GameOpportunityView, error)
	Update(ctx context.Context, db *gorm.DB, opportunity *GameOpportunity) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
