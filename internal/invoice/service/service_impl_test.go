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
	"github.com/sortelabs/promo/internal/config"
	drawnumberrepository "github.com/sortelabs/promo/internal/drawnumber/repository"
	gameopportunityrepository "github.com/sortelabs/promo/internal/gameopportunity/repository"
	"github.com/sortelabs/promo/internal/invoice/domain"
	invoicerepository "github.com/sortelabs/promo/internal/invoice/repository"
	productdomain "github.com/sortelabs/promo/internal/product/domain"
	"github.com/sortelabs/promo/internal/sales"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type salesStub struct {
	summary *sales.Summary
	err     error
}

func (s *salesStub) FiscalSummary(ctx context.Context, fiscalCode string) (*sales.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

type productStub struct {
	exists bool
	err    error
}

func (p *productStub) Create(ctx context.Context, req productdomain.CreateProductRequest) (productdomain.Product, error) {
	return productdomain.Product{}, p.err
}

func (p *productStub) List(ctx context.Context, req productdomain.ListProductRequest) (productdomain.ListProductResponse, error) {
	return productdomain.ListProductResponse{}, p.err
}

func (p *productStub) GetByID(ctx context.Context, id string) (productdomain.Product, error) {
	return productdomain.Product{}, p.err
}

func (p *productStub) Update(ctx context.Context, req productdomain.UpdateProductRequest) (productdomain.Product, error) {
	return productdomain.Product{}, p.err
}

func (p *productStub) Delete(ctx context.Context, id string) error {
	return p.err
}

func (p *productStub) ExistsAnyEAN(ctx context.Context, eans []string) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	return p.exists, nil
}

func TestAddFromFiscalCodeSingleChance(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	salesAPI := &salesStub{summary: &sales.Summary{
		FiscalCode: "NF-100",
		TotalValue: 200,
		Store:      "Loja 12",
		PDV:        "3",
	}}
	service, db := setupInvoiceService(t, node, salesAPI, &productStub{}, config.Config{})
	seedClient(t, db, node, clientID)

	result, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-100",
		ClientID:   clientID.String(),
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}

	if result.Chances != 1 {
		t.Fatalf("expected 1 chance, got %d", result.Chances)
	}
	if len(result.DrawNumbers) != 1 {
		t.Fatalf("expected 1 draw number, got %d", len(result.DrawNumbers))
	}
	if result.DrawNumbers[0] < 1 || result.DrawNumbers[0] > 9999999 {
		t.Fatalf("draw number out of range: %d", result.DrawNumbers[0])
	}
	if result.Invoice.Store != "Loja 12" {
		t.Fatalf("expected store from sale, got %q", result.Invoice.Store)
	}
	if count := countRows(t, db, "game_opportunities"); count != 1 {
		t.Fatalf("expected 1 game opportunity, got %d", count)
	}
	if count := countRows(t, db, "draw_numbers"); count != 1 {
		t.Fatalf("expected 1 draw number row, got %d", count)
	}
}

func TestAddFromFiscalCodeDoublesChances(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	salesAPI := &salesStub{summary: &sales.Summary{
		FiscalCode: "NF-200",
		TotalValue: 450,
		EANs:       []string{"7891000100103"},
	}}
	service, db := setupInvoiceService(t, node, salesAPI, &productStub{exists: true}, config.Config{})
	seedClient(t, db, node, clientID)

	result, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-200",
		ClientID:   clientID.String(),
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}

	// floor(450/200) = 2 base chances, doubled once by the qualifying item.
	if result.Chances != 4 {
		t.Fatalf("expected 4 chances, got %d", result.Chances)
	}
	if !result.Invoice.HasItem {
		t.Fatalf("expected has_item to be set")
	}
	if count := countRows(t, db, "game_opportunities"); count != 4 {
		t.Fatalf("expected 4 game opportunities, got %d", count)
	}

	seen := map[int64]bool{}
	for _, number := range result.DrawNumbers {
		if seen[number] {
			t.Fatalf("draw number %d handed out twice", number)
		}
		seen[number] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 unique draw numbers, got %d", len(seen))
	}
}

func TestAddFromFiscalCodeCreditcardDoublesOnce(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	// Credit card payment and a qualifying item together still double
	// only once.
	salesAPI := &salesStub{summary: &sales.Summary{
		FiscalCode:     "NF-250",
		TotalValue:     200,
		PaymentMethods: []string{"creditcard"},
		EANs:           []string{"7891000100103"},
	}}
	service, db := setupInvoiceService(t, node, salesAPI, &productStub{exists: true}, config.Config{})
	seedClient(t, db, node, clientID)

	result, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-250",
		ClientID:   clientID.String(),
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if result.Chances != 2 {
		t.Fatalf("expected 2 chances, got %d", result.Chances)
	}
	if !result.Invoice.HasCreditcard {
		t.Fatalf("expected has_creditcard to be set")
	}
}

func TestAddFromFiscalCodeBelowMinimum(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	salesAPI := &salesStub{summary: &sales.Summary{
		FiscalCode: "NF-300",
		TotalValue: 150,
	}}
	service, db := setupInvoiceService(t, node, salesAPI, &productStub{}, config.Config{})
	seedClient(t, db, node, clientID)

	_, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-300",
		ClientID:   clientID.String(),
	})
	if !errors.Is(err, domain.ErrBelowMinimumValue) {
		t.Fatalf("expected below minimum error, got %v", err)
	}
	if count := countRows(t, db, "invoices"); count != 0 {
		t.Fatalf("expected no invoice rows, got %d", count)
	}
}

func TestAddFromFiscalCodeDuplicate(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	salesAPI := &salesStub{summary: &sales.Summary{
		FiscalCode: "NF-400",
		TotalValue: 200,
	}}
	service, db := setupInvoiceService(t, node, salesAPI, &productStub{}, config.Config{})
	seedClient(t, db, node, clientID)

	req := domain.AddInvoiceRequest{FiscalCode: "NF-400", ClientID: clientID.String()}
	if _, err := service.AddFromFiscalCode(context.Background(), req); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := service.AddFromFiscalCode(context.Background(), req)
	if !errors.Is(err, domain.ErrDuplicateFiscalCode) {
		t.Fatalf("expected duplicate fiscal code error, got %v", err)
	}
	if count := countRows(t, db, "invoices"); count != 1 {
		t.Fatalf("expected 1 invoice row, got %d", count)
	}
}

func TestAddFromFiscalCodeSaleNotFound(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	service, db := setupInvoiceService(t, node, &salesStub{err: sales.ErrNotFound}, &productStub{}, config.Config{})
	seedClient(t, db, node, clientID)

	_, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-500",
		ClientID:   clientID.String(),
	})
	if !errors.Is(err, domain.ErrInvalidFiscalCode) {
		t.Fatalf("expected invalid fiscal code error, got %v", err)
	}
}

func TestAddFromFiscalCodeSalesOutage(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	service, db := setupInvoiceService(t, node, &salesStub{err: sales.ErrUnavailable}, &productStub{}, config.Config{})
	seedClient(t, db, node, clientID)

	_, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-600",
		ClientID:   clientID.String(),
	})
	if !errors.Is(err, domain.ErrSalesUnavailable) {
		t.Fatalf("expected sales unavailable error, got %v", err)
	}
}

func TestAddFromFiscalCodeUnknownClient(t *testing.T) {
	node := mustNode(t)

	service, _ := setupInvoiceService(t, node, &salesStub{}, &productStub{}, config.Config{})

	_, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-700",
		ClientID:   node.Generate().String(),
	})
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected client not found error, got %v", err)
	}
}

func TestAddFromFiscalCodeDrawNumberExhausted(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	salesAPI := &salesStub{summary: &sales.Summary{
		FiscalCode: "NF-800",
		TotalValue: 200,
	}}
	cfg := config.Config{DrawNumberMax: 1, DrawNumberMaxAttempts: 5}
	service, db := setupInvoiceService(t, node, salesAPI, &productStub{}, cfg)
	seedClient(t, db, node, clientID)

	// With a number space of one, a pre-existing number leaves the
	// generator nothing to hand out.
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO draw_numbers (id, invoice_id, number, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		node.Generate(), node.Generate(), int64(1), true, now, now,
	).Error; err != nil {
		t.Fatalf("seed draw number: %v", err)
	}

	_, err := service.AddFromFiscalCode(context.Background(), domain.AddInvoiceRequest{
		FiscalCode: "NF-800",
		ClientID:   clientID.String(),
	})
	if !errors.Is(err, domain.ErrDrawNumberExhausted) {
		t.Fatalf("expected draw number exhausted error, got %v", err)
	}
	if count := countRows(t, db, "invoices"); count != 0 {
		t.Fatalf("expected the invoice to roll back, got %d rows", count)
	}
	if count := countRows(t, db, "game_opportunities"); count != 0 {
		t.Fatalf("expected opportunities to roll back, got %d rows", count)
	}
}

func TestListPagesWithCursor(t *testing.T) {
	node := mustNode(t)
	clientID := node.Generate()

	service, db := setupInvoiceService(t, node, &salesStub{}, &productStub{}, config.Config{})
	seedClient(t, db, node, clientID)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		if err := db.Exec(
			`INSERT INTO invoices (id, fiscal_code, invoice_value, client_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			node.Generate(), fmt.Sprintf("NF-LIST-%d", i), 200.0, clientID,
			base.Add(time.Duration(i)*time.Minute), base.Add(time.Duration(i)*time.Minute),
		).Error; err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}

	page1, err := service.List(context.Background(), domain.ListInvoiceRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(page1.Invoices) != 2 || !page1.HasMore {
		t.Fatalf("expected 2 invoices and more pages, got %d (has_more=%v)", len(page1.Invoices), page1.HasMore)
	}

	page2, err := service.List(context.Background(), domain.ListInvoiceRequest{
		Pagination: pagination.Pagination{PageToken: page1.NextPageToken, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Invoices) != 2 {
		t.Fatalf("expected 2 invoices on page 2, got %d", len(page2.Invoices))
	}
	if page2.Invoices[0].ID == page1.Invoices[0].ID {
		t.Fatalf("page 2 repeated page 1")
	}

	page3, err := service.List(context.Background(), domain.ListInvoiceRequest{
		Pagination: pagination.Pagination{PageToken: page2.NextPageToken, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(page3.Invoices) != 1 || page3.HasMore {
		t.Fatalf("expected a final page of 1, got %d (has_more=%v)", len(page3.Invoices), page3.HasMore)
	}
}

func setupInvoiceService(
	t *testing.T,
	node *snowflake.Node,
	salesAPI sales.Client,
	productSvc productdomain.Service,
	cfg config.Config,
) (domain.Service, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	prepareCampaignSchema(t, db)

	service := New(Params{
		Config:          cfg,
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Repo:            invoicerepository.Provide(),
		ClientRepo:      clientrepository.Provide(),
		OpportunityRepo: gameopportunityrepository.Provide(),
		DrawNumberRepo:  drawnumberrepository.Provide(),
		ProductSvc:      productSvc,
		Sales:           salesAPI,
	})

	return service, db
}

func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func prepareCampaignSchema(t *testing.T, db *gorm.DB) {
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
		`CREATE UNIQUE INDEX uidx_clients_cpf ON clients (cpf)`,
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
		`CREATE UNIQUE INDEX uidx_invoices_fiscal_code ON invoices (fiscal_code)`,
		`CREATE TABLE game_opportunities (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			gift TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			used_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE draw_numbers (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			number BIGINT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			winner_at DATETIME,
			email_sent_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX uidx_draw_numbers_number ON draw_numbers (number)`,
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

func seedClient(t *testing.T, db *gorm.DB, node *snowflake.Node, id snowflake.ID) {
	t.Helper()

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO clients (id, name, cpf, cel, email, token, security_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "Maria da Silva", fmt.Sprintf("%011d", int64(id)%int64(99999999999)), "11999990000",
		"maria@example.com", id.String(), "", now, now,
	).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, table string) int {
	t.Helper()

	var count int
	if err := db.Raw(`SELECT COUNT(1) FROM ` + table).Scan(&count).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
