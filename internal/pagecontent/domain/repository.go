package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, page *PageContent) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PageContent, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*PageContent, error)
	List(ctx context.Context, db *gorm.DB, filter ListPageContentFilter, page pagination.Pagination) ([]*PageContent, error)
	Update(ctx context.Context, db *gorm.DB, page *PageContent) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
