package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/luck/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindOldestOpportunity(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	err := db.WithContext(ctx).Raw(
		`SELECT go.id, go.invoice_id, go.created_at
		 FROM game_opportunities go
		 JOIN invoices i ON go.invoice_id = i.id
		 WHERE i.client_id = ? AND go.active = true AND go.used_at IS NULL
		 ORDER BY go.created_at ASC, go.id ASC
		 LIMIT 1`,
		clientID,
	).Scan(&opportunity).Error
	if err != nil {
		return nil, err
	}
	if opportunity.ID == 0 {
		return nil, nil
	}
	return &opportunity, nil
}

func (r *repo) HasPriorWin(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM vouchers v
		 JOIN game_opportunities go ON v.game_opportunity_id = go.id
		 JOIN invoices i ON go.invoice_id = i.id
		 WHERE i.client_id = ?`,
		clientID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) LockEligibleVoucher(ctx context.Context, tx *gorm.DB, now time.Time) (*domain.LockedVoucher, error) {
	query := `SELECT id, coupom, voucher_value
		 FROM vouchers
		 WHERE draw_date <= ? AND game_opportunity_id IS NULL
		 ORDER BY draw_date ASC, id ASC
		 LIMIT 1`
	// SQLite serializes writers on its own and rejects FOR UPDATE.
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var voucher domain.LockedVoucher
	err := tx.WithContext(ctx).Raw(query, now).Scan(&voucher).Error
	if err != nil {
		return nil, err
	}
	if voucher.ID == 0 {
		return nil, nil
	}
	return &voucher, nil
}

func (r *repo) ClaimVoucher(ctx context.Context, tx *gorm.DB, voucherID, opportunityID snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE vouchers SET game_opportunity_id = ?, updated_at = ?
		 WHERE id = ? AND game_opportunity_id IS NULL`,
		opportunityID,
		time.Now().UTC(),
		voucherID,
	).Error
}

func (r *repo) MarkOpportunityUsed(ctx context.Context, tx *gorm.DB, opportunityID snowflake.ID, gift string, usedAt time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE game_opportunities SET gift = ?, used_at = ?, updated_at = ?
		 WHERE id = ?`,
		gift,
		usedAt,
		usedAt,
		opportunityID,
	).Error
}
