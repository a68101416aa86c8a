package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sortelabs/promo/internal/voucher/domain"
	voucherrepository "github.com/sortelabs/promo/internal/voucher/repository"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreateVoucher(t *testing.T) {
	service, db := setupVoucherService(t)

	created, err := service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-50",
		DrawDate:     "2026-03-14",
		VoucherValue: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "VALE-50", created.Coupom)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), created.DrawDate.UTC())
	assert.Nil(t, created.GameOpportunityID)

	var count int
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM vouchers`).Scan(&count).Error)
	assert.Equal(t, 1, count)
}

func TestCreateVoucherValidation(t *testing.T) {
	service, _ := setupVoucherService(t)

	_, err := service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "  ",
		DrawDate:     "2026-03-14",
		VoucherValue: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCoupom)

	_, err = service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-50",
		DrawDate:     "14/03/2026",
		VoucherValue: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDrawDate)

	_, err = service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-50",
		DrawDate:     "2026-03-14",
		VoucherValue: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestUpdateVoucherPartial(t *testing.T) {
	service, _ := setupVoucherService(t)

	created, err := service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-50",
		DrawDate:     "2026-03-14",
		VoucherValue: 50,
	})
	require.NoError(t, err)

	newValue := 75.0
	updated, err := service.Update(context.Background(), domain.UpdateVoucherRequest{
		ID:           created.ID.String(),
		VoucherValue: &newValue,
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.VoucherValue)
	assert.Equal(t, "VALE-50", updated.Coupom)

	_, err = service.Update(context.Background(), domain.UpdateVoucherRequest{
		ID: "abc",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetAndDeleteVoucher(t *testing.T) {
	service, _ := setupVoucherService(t)

	created, err := service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-50",
		DrawDate:     "2026-03-14",
		VoucherValue: 50,
	})
	require.NoError(t, err)

	fetched, err := service.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	require.NoError(t, service.Delete(context.Background(), created.ID.String()))

	_, err = service.GetByID(context.Background(), created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = service.Delete(context.Background(), created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListVouchersFiltersClaimed(t *testing.T) {
	service, db := setupVoucherService(t)
	node := voucherNode(t)

	free, err := service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-LIVRE",
		DrawDate:     "2026-03-14",
		VoucherValue: 50,
	})
	require.NoError(t, err)

	claimed, err := service.Create(context.Background(), domain.CreateVoucherRequest{
		Coupom:       "VALE-USADO",
		DrawDate:     "2026-03-15",
		VoucherValue: 60,
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		`UPDATE vouchers SET game_opportunity_id = ? WHERE id = ?`,
		node.Generate(), claimed.ID,
	).Error)

	claimedOnly := true
	resp, err := service.List(context.Background(), domain.ListVoucherRequest{
		Pagination: pagination.Pagination{PageSize: 10},
		Claimed:    &claimedOnly,
	})
	require.NoError(t, err)
	require.Len(t, resp.Vouchers, 1)
	assert.Equal(t, claimed.ID, resp.Vouchers[0].ID)

	claimedOnly = false
	resp, err = service.List(context.Background(), domain.ListVoucherRequest{
		Pagination: pagination.Pagination{PageSize: 10},
		Claimed:    &claimedOnly,
	})
	require.NoError(t, err)
	require.Len(t, resp.Vouchers, 1)
	assert.Equal(t, free.ID, resp.Vouchers[0].ID)
}

func TestListDrawnMasksWinner(t *testing.T) {
	service, db := setupVoucherService(t)
	node := voucherNode(t)

	now := time.Now().UTC()
	clientID := node.Generate()
	invoiceID := node.Generate()
	opportunityID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO clients (id, name, cpf, token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		clientID, "Maria da Silva", "529.982.247-25", "token-drawn", now, now,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO invoices (id, fiscal_code, client_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		invoiceID, "NF-DRAWN", clientID, now, now,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO game_opportunities (id, invoice_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		opportunityID, invoiceID, true, now, now,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO vouchers (id, coupom, draw_date, voucher_value, game_opportunity_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		node.Generate(), "VALE-GANHO", now.Add(-time.Hour), 50.0, opportunityID, now, now,
	).Error)
	// Unclaimed vouchers stay off the public list.
	require.NoError(t, db.Exec(
		`INSERT INTO vouchers (id, coupom, draw_date, voucher_value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		node.Generate(), "VALE-LIVRE", now.Add(-time.Hour), 50.0, now, now,
	).Error)

	drawn, err := service.ListDrawn(context.Background())
	require.NoError(t, err)
	require.Len(t, drawn, 1)
	assert.Equal(t, "Maria d. S.", drawn[0].Name)
	assert.Equal(t, "529.###.###-25", drawn[0].CPF)
}

func setupVoucherService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	_ = db.Exec("PRAGMA journal_mode = WAL").Error
	prepareVoucherSchema(t, db)

	service := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: voucherNode(t),
		Repo:  voucherrepository.Provide(),
	})

	return service, db
}

func prepareVoucherSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	statements := []string{
		`CREATE TABLE clients (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			cpf TEXT NOT NULL,
			token TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoices (
			id BIGINT PRIMARY KEY,
			fiscal_code TEXT NOT NULL,
			invoice_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			client_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE game_opportunities (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			gift TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			used_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE vouchers (
			id BIGINT PRIMARY KEY,
			coupom TEXT NOT NULL,
			draw_date DATETIME NOT NULL,
			voucher_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			game_opportunity_id BIGINT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX uidx_vouchers_coupom ON vouchers (coupom)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
}

func voucherNode(t *testing.T) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}
