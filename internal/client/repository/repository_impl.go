package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/pkg/db/option"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const clientColumns = `id, name, cpf, birthday, cel, email, token, security_token,
	security_token_email_sent_at, welcome_email_sent_at, is_pre_register,
	is_mega_winner, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (
			id, name, cpf, birthday, cel, email, token, security_token,
			is_pre_register, is_mega_winner, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.Name,
		client.CPF,
		client.Birthday,
		client.Cel,
		client.Email,
		client.Token,
		client.SecurityToken,
		client.IsPreRegister,
		client.IsMegaWinner,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByCPF(ctx context.Context, db *gorm.DB, cpf string) (*domain.Client, error) {
	return r.findOne(ctx, db, "cpf = ?", cpf)
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Client, error) {
	return r.findOne(ctx, db, "token = ?", token)
}

func (r *repo) FindByTokenAndSecurityToken(ctx context.Context, db *gorm.DB, token, securityToken string) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT `+clientColumns+` FROM clients WHERE token = ? AND security_token = ?`,
		token,
		securityToken,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, value any) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT `+clientColumns+` FROM clients WHERE `+cond,
		value,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := db.WithContext(ctx).Model(&domain.Client{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.CPF != "" {
		stmt = stmt.Where("cpf = ?", filter.CPF)
	}
	if filter.Cel != "" {
		stmt = stmt.Where("cel = ?", filter.Cel)
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET
			name = ?, cpf = ?, birthday = ?, cel = ?, email = ?,
			is_pre_register = ?, is_mega_winner = ?, updated_at = ?
		 WHERE id = ?`,
		client.Name,
		client.CPF,
		client.Birthday,
		client.Cel,
		client.Email,
		client.IsPreRegister,
		client.IsMegaWinner,
		client.UpdatedAt,
		client.ID,
	).Error
}

func (r *repo) UpdateSecurityToken(ctx context.Context, db *gorm.DB, id snowflake.ID, securityToken string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET security_token = ?, updated_at = ? WHERE id = ?`,
		securityToken,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) StampSecurityEmailSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET security_token_email_sent_at = ? WHERE id = ?`,
		at,
		id,
	).Error
}

func (r *repo) StampWelcomeEmailSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET welcome_email_sent_at = ?, updated_at = ? WHERE id = ?`,
		at,
		at,
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM clients WHERE id = ?`, id).Error
}

func (r *repo) Summary(ctx context.Context, db *gorm.DB, token string) (*domain.WebSummary, error) {
	var summary domain.WebSummary

	var opportunityRows []struct {
		UsedAt *time.Time `gorm:"column:used_at"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT go.used_at
		 FROM game_opportunities go
		 JOIN invoices i ON i.id = go.invoice_id
		 JOIN clients c ON i.client_id = c.id
		 WHERE c.token = ?`,
		token,
	).Scan(&opportunityRows).Error
	if err != nil {
		return nil, err
	}
	summary.OpportunitiesTotal = int64(len(opportunityRows))
	for _, row := range opportunityRows {
		if row.UsedAt == nil {
			summary.OpportunitiesNotUsed++
		}
	}

	err = db.WithContext(ctx).Raw(
		`SELECT count(d.id)
		 FROM draw_numbers d
		 JOIN invoices i ON d.invoice_id = i.id
		 JOIN clients c ON i.client_id = c.id
		 WHERE c.token = ?`,
		token,
	).Scan(&summary.DrawNumbersTotal).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Raw(
		`SELECT count(i.id)
		 FROM invoices i
		 JOIN clients c ON i.client_id = c.id
		 WHERE c.token = ?`,
		token,
	).Scan(&summary.InvoicesTotal).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}
