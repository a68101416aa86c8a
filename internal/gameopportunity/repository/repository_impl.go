package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/gameopportunity/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, opportunity *domain.GameOpportunity) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO game_opportunities (id, invoice_id, gift, active, used_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		opportunity.ID,
		opportunity.InvoiceID,
		opportunity.Gift,
		opportunity.Active,
		opportunity.UsedAt,
		opportunity.CreatedAt,
		opportunity.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.GameOpportunityView, error) {
	var view domain.GameOpportunityView
	err := db.WithContext(ctx).Raw(
		`SELECT go.id, go.invoice_id, go.gift, go.active, go.used_at, go.created_at, go.updated_at,
			c.name AS client_name, i.fiscal_code
		 FROM game_opportunities go
		 LEFT JOIN invoices i ON go.invoice_id = i.id
		 LEFT JOIN clients c ON i.client_id = c.id
		 WHERE go.id = ?`,
		id,
	).Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, nil
	}
	return &view, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.GameOpportunityView, error) {
	size := page.PageSize
	if size <= 0 {
		size = 10
	}

	query := `SELECT go.id, go.invoice_id, go.gift, go.active, go.used_at, go.created_at, go.updated_at,
			c.name AS client_name, i.fiscal_code
		 FROM game_opportunities go
		 LEFT JOIN invoices i ON go.invoice_id = i.id
		 LEFT JOIN clients c ON i.client_id = c.id`
	args := []any{}
	if clause, clauseArgs, ok := cursorClause(page.PageToken, "go"); ok {
		query += " WHERE " + clause
		args = append(args, clauseArgs...)
	}
	query += ` ORDER BY go.created_at DESC, go.id DESC LIMIT ?`
	args = append(args, size+1)

	var views []*domain.GameOpportunityView
	err := db.WithContext(ctx).Raw(query, args...).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// cursorClause turns a page token into a keyset predicate on the
// aliased table.
func cursorClause(pageToken, alias string) (string, []any, bool) {
	if pageToken == "" {
		return "", nil, false
	}
	cursor, err := pagination.DecodeCursor(pageToken)
	if err != nil || cursor.CreatedAt == "" {
		return "", nil, false
	}
	ts, err := time.Parse(time.RFC3339, cursor.CreatedAt)
	if err != nil {
		return "", nil, false
	}
	clause := "(" + alias + ".created_at < ?) OR (" + alias + ".created_at = ? AND " + alias + ".id < ?)"
	return clause, []any{ts, ts, cursor.ID}, true
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, opportunity *domain.GameOpportunity) error {
	return db.WithContext(ctx).Exec(
		`UPDATE game_opportunities SET gift = ?, active = ?, used_at = ?, updated_at = ?
		 WHERE id = ?`,
		opportunity.Gift,
		opportunity.Active,
		opportunity.UsedAt,
		opportunity.UpdatedAt,
		opportunity.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM game_opportunities WHERE id = ?`, id).Error
}
