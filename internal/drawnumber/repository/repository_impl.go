package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/drawnumber/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, number *domain.DrawNumber) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO draw_numbers (id, invoice_id, number, active, winner_at, email_sent_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		number.ID,
		number.InvoiceID,
		number.Number,
		number.Active,
		number.WinnerAt,
		number.EmailSentAt,
		number.CreatedAt,
		number.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DrawNumberView, error) {
	var view domain.DrawNumberView
	err := db.WithContext(ctx).Raw(
		`SELECT dn.id, dn.invoice_id, dn.number, dn.active, dn.winner_at, dn.email_sent_at,
			dn.created_at, dn.updated_at, i.fiscal_code, c.name AS client_name
		 FROM draw_numbers dn
		 LEFT JOIN invoices i ON dn.invoice_id = i.id
		 LEFT JOIN clients c ON i.client_id = c.id
		 WHERE dn.id = ?`,
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

func (r *repo) ExistsNumber(ctx context.Context, db *gorm.DB, number int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM draw_numbers WHERE number = ?`,
		number,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.DrawNumberView, error) {
	size := page.PageSize
	if size <= 0 {
		size = 10
	}

	query := `SELECT dn.id, dn.invoice_id, dn.number, dn.active, dn.winner_at, dn.email_sent_at,
			dn.created_at, dn.updated_at, i.fiscal_code, c.name AS client_name
		 FROM draw_numbers dn
		 LEFT JOIN invoices i ON dn.invoice_id = i.id
		 LEFT JOIN clients c ON i.client_id = c.id`
	args := []any{}
	if clause, clauseArgs, ok := cursorClause(page.PageToken, "dn"); ok {
		query += " WHERE " + clause
		args = append(args, clauseArgs...)
	}
	query += ` ORDER BY dn.created_at DESC, dn.id DESC LIMIT ?`
	args = append(args, size+1)

	var views []*domain.DrawNumberView
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

func (r *repo) Update(ctx context.Context, db *gorm.DB, number *domain.DrawNumber) error {
	return db.WithContext(ctx).Exec(
		`UPDATE draw_numbers SET number = ?, active = ?, winner_at = ?, email_sent_at = ?, updated_at = ?
		 WHERE id = ?`,
		number.Number,
		number.Active,
		number.WinnerAt,
		number.EmailSentAt,
		number.UpdatedAt,
		number.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM draw_numbers WHERE id = ?`, id).Error
}
