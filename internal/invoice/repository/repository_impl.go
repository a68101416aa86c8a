package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/invoice/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

const invoiceColumns = `id, fiscal_code, invoice_value, has_item, has_creditcard, has_partner_code,
	pdv, store, num_coupon, cnpj, creditcard, client_id, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (`+invoiceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.FiscalCode,
		invoice.InvoiceValue,
		invoice.HasItem,
		invoice.HasCreditcard,
		invoice.HasPartnerCode,
		invoice.PDV,
		invoice.Store,
		invoice.NumCoupon,
		invoice.CNPJ,
		invoice.Creditcard,
		invoice.ClientID,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.InvoiceView, error) {
	var view domain.InvoiceView
	err := db.WithContext(ctx).Raw(
		`SELECT i.*, c.name AS client_name
		 FROM invoices i
		 LEFT JOIN clients c ON i.client_id = c.id
		 WHERE i.id = ?`,
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

func (r *repo) FindByFiscalCode(ctx context.Context, db *gorm.DB, fiscalCode string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE fiscal_code = ?`,
		strings.TrimSpace(fiscalCode),
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.InvoiceView, error) {
	size := page.PageSize
	if size <= 0 {
		size = 10
	}

	query := `SELECT i.*, c.name AS client_name
		 FROM invoices i
		 LEFT JOIN clients c ON i.client_id = c.id`
	args := []any{}
	if clause, clauseArgs, ok := cursorClause(page.PageToken, "i"); ok {
		query += " WHERE " + clause
		args = append(args, clauseArgs...)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC LIMIT ?`
	args = append(args, size+1)

	var views []*domain.InvoiceView
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

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET fiscal_code = ?, pdv = ?, store = ?, updated_at = ?
		 WHERE id = ?`,
		invoice.FiscalCode,
		invoice.PDV,
		invoice.Store,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id).Error
}

func (r *repo) CountByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices WHERE client_id = ?`,
		clientID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
