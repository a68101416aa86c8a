package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/voucher/domain"
	"github.com/sortelabs/promo/pkg/db/option"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, voucher *domain.Voucher) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vouchers (id, coupom, draw_date, voucher_value, game_opportunity_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		voucher.ID,
		voucher.Coupom,
		voucher.DrawDate,
		voucher.VoucherValue,
		voucher.GameOpportunityID,
		voucher.CreatedAt,
		voucher.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Voucher, error) {
	var voucher domain.Voucher
	err := db.WithContext(ctx).Raw(
		`SELECT id, coupom, draw_date, voucher_value, game_opportunity_id, created_at, updated_at
		 FROM vouchers WHERE id = ?`,
		id,
	).Scan(&voucher).Error
	if err != nil {
		return nil, err
	}
	if voucher.ID == 0 {
		return nil, nil
	}
	return &voucher, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListVoucherFilter, page pagination.Pagination) ([]*domain.Voucher, error) {
	var vouchers []*domain.Voucher
	stmt := db.WithContext(ctx).Model(&domain.Voucher{})
	if filter.Coupom != "" {
		stmt = stmt.Where("coupom = ?", filter.Coupom)
	}
	if filter.Claimed != nil {
		if *filter.Claimed {
			stmt = stmt.Where("game_opportunity_id IS NOT NULL")
		} else {
			stmt = stmt.Where("game_opportunity_id IS NULL")
		}
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&vouchers).Error
	if err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *repo) ListDrawn(ctx context.Context, db *gorm.DB) ([]*domain.DrawnVoucher, error) {
	var drawn []*domain.DrawnVoucher
	err := db.WithContext(ctx).Raw(
		`SELECT v.draw_date, c.name, c.cpf
		 FROM vouchers v
		 JOIN game_opportunities go ON v.game_opportunity_id = go.id
		 JOIN invoices i ON go.invoice_id = i.id
		 JOIN clients c ON i.client_id = c.id
		 WHERE v.game_opportunity_id IS NOT NULL
		 ORDER BY v.draw_date DESC`,
	).Scan(&drawn).Error
	if err != nil {
		return nil, err
	}
	return drawn, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, voucher *domain.Voucher) error {
	return db.WithContext(ctx).Exec(
		`UPDATE vouchers SET coupom = ?, draw_date = ?, voucher_value = ?, updated_at = ?
		 WHERE id = ?`,
		voucher.Coupom,
		voucher.DrawDate,
		voucher.VoucherValue,
		voucher.UpdatedAt,
		voucher.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM vouchers WHERE id = ?`, id).Error
}
