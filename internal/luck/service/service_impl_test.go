package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	clientrepository "github.com/sortelabs/promo/internal/client/repository"
	"github.com/sortelabs/promo/internal/clock"
	"github.com/sortelabs/promo/internal/luck/domain"
	luckrepository "github.com/sortelabs/promo/internal/luck/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type winnerEmail struct {
	to     string
	coupom string
}

type emailStub struct {
	winners chan winnerEmail
}

func newEmailStub() *emailStub {
	return &emailStub{winners: make(chan winnerEmail, 4)}
}

func (e *emailStub) SendWelcome(ctx context.Context, to, name string) error { return nil }

func (e *emailStub) SendSecurityAuthorization(ctx context.Context, to, name, token string) error {
	return nil
}

func (e *emailStub) SendVoucherWinner(ctx context.Context, to, name, coupon string) error {
	e.winners <- winnerEmail{to: to, coupom: coupon}
	return nil
}

func (e *emailStub) SendAdjustmentVoucher(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (e *emailStub) SendDrawWinner(ctx context.Context, to, name string) error { return nil }

func TestTryMyLuckWin(t *testing.T) {
	node := mustNode(t)
	fake := clock.NewFakeClock(time.Now())
	emails := newEmailStub()
	service, db := setupLuckService(t, fake, emails)

	clientID := node.Generate()
	seedLuckClient(t, db, clientID, "token-win", "ana@example.com")
	invoiceID := seedInvoice(t, db, node, clientID)
	opportunityID := seedOpportunity(t, db, node, invoiceID)
	voucherID := seedVoucher(t, db, node, "VALE-50", fake.Now().Add(-time.Hour))

	result, err := service.TryMyLuck(context.Background(), "token-win")
	if err != nil {
		t.Fatalf("try my luck: %v", err)
	}
	if !result.Win {
		t.Fatalf("expected a win, got %q", result.Message)
	}
	if result.Coupom == nil || *result.Coupom != "VALE-50" {
		t.Fatalf("expected coupom VALE-50, got %v", result.Coupom)
	}

	var claimedBy *int64
	if err := db.Raw(`SELECT game_opportunity_id FROM vouchers WHERE id = ?`, voucherID).Scan(&claimedBy).Error; err != nil {
		t.Fatalf("read voucher: %v", err)
	}
	if claimedBy == nil || *claimedBy != int64(opportunityID) {
		t.Fatalf("expected voucher claimed by opportunity %d, got %v", opportunityID, claimedBy)
	}

	var usedAt *time.Time
	if err := db.Raw(`SELECT used_at FROM game_opportunities WHERE id = ?`, opportunityID).Scan(&usedAt).Error; err != nil {
		t.Fatalf("read opportunity: %v", err)
	}
	if usedAt == nil {
		t.Fatalf("expected opportunity marked used")
	}

	select {
	case sent := <-emails.winners:
		if sent.to != "ana@example.com" || sent.coupom != "VALE-50" {
			t.Fatalf("unexpected winner email: %+v", sent)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("winner email never sent")
	}
}

func TestTryMyLuckNoOpportunity(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	service, db := setupLuckService(t, fake, newEmailStub())

	node := mustNode(t)
	clientID := node.Generate()
	seedLuckClient(t, db, clientID, "token-empty", "")

	_, err := service.TryMyLuck(context.Background(), "token-empty")
	if !errors.Is(err, domain.ErrNoOpportunity) {
		t.Fatalf("expected no opportunity error, got %v", err)
	}
}

func TestTryMyLuckUnknownClient(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	service, _ := setupLuckService(t, fake, newEmailStub())

	_, err := service.TryMyLuck(context.Background(), "token-missing")
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected client not found error, got %v", err)
	}
}

func TestTryMyLuckNoEligibleVoucher(t *testing.T) {
	node := mustNode(t)
	fake := clock.NewFakeClock(time.Now())
	service, db := setupLuckService(t, fake, newEmailStub())

	clientID := node.Generate()
	seedLuckClient(t, db, clientID, "token-early", "")
	invoiceID := seedInvoice(t, db, node, clientID)
	opportunityID := seedOpportunity(t, db, node, invoiceID)
	// The only voucher is not drawable yet.
	seedVoucher(t, db, node, "VALE-60", fake.Now().Add(24*time.Hour))

	result, err := service.TryMyLuck(context.Background(), "token-early")
	if err != nil {
		t.Fatalf("try my luck: %v", err)
	}
	if result.Win {
		t.Fatalf("expected a loss")
	}

	var usedAt *time.Time
	if err := db.Raw(`SELECT used_at FROM game_opportunities WHERE id = ?`, opportunityID).Scan(&usedAt).Error; err != nil {
		t.Fatalf("read opportunity: %v", err)
	}
	if usedAt == nil {
		t.Fatalf("expected the chance to be consumed on a loss")
	}

	// The chance is gone, so the next attempt has nothing to play.
	_, err = service.TryMyLuck(context.Background(), "token-early")
	if !errors.Is(err, domain.ErrNoOpportunity) {
		t.Fatalf("expected no opportunity on second attempt, got %v", err)
	}
}

func TestTryMyLuckPriorWinnerLoses(t *testing.T) {
	node := mustNode(t)
	fake := clock.NewFakeClock(time.Now())
	service, db := setupLuckService(t, fake, newEmailStub())

	clientID := node.Generate()
	seedLuckClient(t, db, clientID, "token-repeat", "")
	invoiceID := seedInvoice(t, db, node, clientID)
	seedOpportunity(t, db, node, invoiceID)
	seedOpportunity(t, db, node, invoiceID)
	seedVoucher(t, db, node, "VALE-70", fake.Now().Add(-time.Hour))
	seedVoucher(t, db, node, "VALE-71", fake.Now().Add(-time.Hour))

	first, err := service.TryMyLuck(context.Background(), "token-repeat")
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if !first.Win {
		t.Fatalf("expected first attempt to win")
	}

	second, err := service.TryMyLuck(context.Background(), "token-repeat")
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if second.Win {
		t.Fatalf("expected second attempt to lose despite voucher stock")
	}

	var unclaimed int
	if err := db.Raw(`SELECT COUNT(1) FROM vouchers WHERE game_opportunity_id IS NULL`).Scan(&unclaimed).Error; err != nil {
		t.Fatalf("count vouchers: %v", err)
	}
	if unclaimed != 1 {
		t.Fatalf("expected 1 voucher left unclaimed, got %d", unclaimed)
	}
}

func TestTryMyLuckVoucherClaimedOnce(t *testing.T) {
	node := mustNode(t)
	fake := clock.NewFakeClock(time.Now())
	service, db := setupLuckService(t, fake, newEmailStub())

	firstClient := node.Generate()
	secondClient := node.Generate()
	seedLuckClient(t, db, firstClient, "token-a", "")
	seedLuckClient(t, db, secondClient, "token-b", "")
	seedOpportunity(t, db, node, seedInvoice(t, db, node, firstClient))
	seedOpportunity(t, db, node, seedInvoice(t, db, node, secondClient))
	seedVoucher(t, db, node, "VALE-80", fake.Now().Add(-time.Hour))

	first, err := service.TryMyLuck(context.Background(), "token-a")
	if err != nil {
		t.Fatalf("first client: %v", err)
	}
	second, err := service.TryMyLuck(context.Background(), "token-b")
	if err != nil {
		t.Fatalf("second client: %v", err)
	}

	if !first.Win || second.Win {
		t.Fatalf("expected exactly one winner, got first=%v second=%v", first.Win, second.Win)
	}
}

func setupLuckService(t *testing.T, clk clock.Clock, emails *emailStub) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	_ = db.Exec("PRAGMA journal_mode = WAL").Error
	prepareLuckSchema(t, db)

	service := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      clk,
		Repo:       luckrepository.Provide(),
		ClientRepo: clientrepository.Provide(),
		Email:      emails,
	})

	return service, db
}

func prepareLuckSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	statements := []string{
		`CREATE TABLE clients (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			cpf TEXT NOT NULL,
			birthday DATETIME,
			cel TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			token TEXT NOT NULL,
			security_token TEXT NOT NULL DEFAULT '',
			security_token_email_sent_at DATETIME,
			welcome_email_sent_at DATETIME,
			is_pre_register BOOLEAN NOT NULL DEFAULT FALSE,
			is_mega_winner BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX uidx_clients_token ON clients (token)`,
		`CREATE TABLE invoices (
			id BIGINT PRIMARY KEY,
			fiscal_code TEXT NOT NULL,
			invoice_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			has_item BOOLEAN NOT NULL DEFAULT FALSE,
			has_creditcard BOOLEAN NOT NULL DEFAULT FALSE,
			has_partner_code BOOLEAN NOT NULL DEFAULT FALSE,
			pdv TEXT NOT NULL DEFAULT '',
			store TEXT NOT NULL DEFAULT '',
			num_coupon TEXT NOT NULL DEFAULT '',
			cnpj TEXT NOT NULL DEFAULT '',
			creditcard TEXT NOT NULL DEFAULT '',
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
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}

func seedLuckClient(t *testing.T, db *gorm.DB, id snowflake.ID, token, email string) {
	t.Helper()

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO clients (id, name, cpf, email, token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, "Ana Souza", fmt.Sprintf("%011d", int64(id)%int64(99999999999)), email, token, now, now,
	).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, clientID snowflake.ID) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO invoices (id, fiscal_code, invoice_value, client_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, "NF-"+id.String(), 200.0, clientID, now, now,
	).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return id
}

func seedOpportunity(t *testing.T, db *gorm.DB, node *snowflake.Node, invoiceID snowflake.ID) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO game_opportunities (id, invoice_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, invoiceID, true, now, now,
	).Error; err != nil {
		t.Fatalf("seed opportunity: %v", err)
	}
	return id
}

func seedVoucher(t *testing.T, db *gorm.DB, node *snowflake.Node, coupom string, drawDate time.Time) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO vouchers (id, coupom, draw_date, voucher_value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, coupom, drawDate.UTC(), 50.0, now, now,
	).Error; err != nil {
		t.Fatalf("seed voucher: %v", err)
	}
	return id
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
