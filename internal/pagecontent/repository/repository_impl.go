package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/pagecontent/domain"
	"github.com/sortelabs/promo/pkg/db/option"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, page *domain.PageContent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO page_contents (id, slug, title, content, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		page.ID,
		page.Slug,
		page.Title,
		page.Content,
		page.Active,
		page.CreatedAt,
		page.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PageContent, error) {
	var page domain.PageContent
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, content, active, created_at, updated_at
		 FROM page_contents WHERE id = ?`,
		id,
	).Scan(&page).Error
	if err != nil {
		return nil, err
	}
	if page.ID == 0 {
		return nil, nil
	}
	return &page, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.PageContent, error) {
	var page domain.PageContent
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, content, active, created_at, updated_at
		 FROM page_contents WHERE slug = ?`,
		slug,
	).Scan(&page).Error
	if err != nil {
		return nil, err
	}
	if page.ID == 0 {
		return nil, nil
	}
	return &page, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPageContentFilter, page pagination.Pagination) ([]*domain.PageContent, error) {
	var pages []*domain.PageContent
	stmt := db.WithContext(ctx).Model(&domain.PageContent{})
	if filter.Slug != "" {
		stmt = stmt.Where("slug = ?", filter.Slug)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&pages).Error
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, page *domain.PageContent) error {
	return db.WithContext(ctx).Exec(
		`UPDATE page_contents SET slug = ?, title = ?, content = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		page.Slug,
		page.Title,
		page.Content,
		page.Active,
		page.UpdatedAt,
		page.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM page_contents WHERE id = ?`, id).Error
}
