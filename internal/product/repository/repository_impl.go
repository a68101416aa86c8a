package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/product/domain"
	"github.com/sortelabs/promo/pkg/db/option"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, ean, description, brand, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.EAN,
		product.Description,
		product.Brand,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, ean, description, brand, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindByEAN(ctx context.Context, db *gorm.DB, ean string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, ean, description, brand, created_at, updated_at
		 FROM products WHERE ean = ?`,
		ean,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) CountByEANs(ctx context.Context, db *gorm.DB, eans []string) (int64, error) {
	if len(eans) == 0 {
		return 0, nil
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("ean IN ?", eans).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListProductFilter, page pagination.Pagination) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.EAN != "" {
		stmt = stmt.Where("ean = ?", filter.EAN)
	}
	if filter.Description != "" {
		stmt = stmt.Where("description LIKE ?", "%"+filter.Description+"%")
	}
	if filter.Brand != "" {
		stmt = stmt.Where("brand = ?", filter.Brand)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET ean = ?, description = ?, brand = ?, updated_at = ?
		 WHERE id = ?`,
		product.EAN,
		product.Description,
		product.Brand,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id).Error
}
