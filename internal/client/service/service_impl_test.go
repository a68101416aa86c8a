package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sortelabs/promo/internal/client/domain"
	clientrepository "github.com/sortelabs/promo/internal/client/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type welcomeEmail struct {
	to   string
	name string
}

type clientEmailStub struct {
	welcomes chan welcomeEmail
}

func newClientEmailStub() *clientEmailStub {
	return &clientEmailStub{welcomes: make(chan welcomeEmail, 4)}
}

func (e *clientEmailStub) SendWelcome(ctx context.Context, to, name string) error {
	e.welcomes <- welcomeEmail{to: to, name: name}
	return nil
}

func (e *clientEmailStub) SendSecurityAuthorization(ctx context.Context, to, name, token string) error {
	return nil
}

func (e *clientEmailStub) SendVoucherWinner(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (e *clientEmailStub) SendAdjustmentVoucher(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (e *clientEmailStub) SendDrawWinner(ctx context.Context, to, name string) error { return nil }

func TestCreateClient(t *testing.T) {
	service, db := setupClientService(t, newClientEmailStub())

	created, err := service.Create(context.Background(), domain.CreateClientRequest{
		Name:     "Maria da Silva",
		CPF:      "52998224725",
		Birthday: "1990-12-25",
		Cel:      "(83) 98877-6655",
		Email:    "maria@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CPF != "529.982.247-25" {
		t.Fatalf("expected formatted cpf, got %q", created.CPF)
	}
	if created.Token == "" {
		t.Fatalf("expected an access token")
	}

	_, err = service.Create(context.Background(), domain.CreateClientRequest{
		Name:     "Outra Maria",
		CPF:      "529.982.247-25",
		Birthday: "1990-12-25",
	})
	if !errors.Is(err, domain.ErrDuplicateCPF) {
		t.Fatalf("expected duplicate cpf error, got %v", err)
	}

	_, err = service.Create(context.Background(), domain.CreateClientRequest{
		Name:     "CPF Errado",
		CPF:      "12345678900",
		Birthday: "1990-12-25",
	})
	if !errors.Is(err, domain.ErrInvalidCPF) {
		t.Fatalf("expected invalid cpf error, got %v", err)
	}

	var count int
	if err := db.Raw(`SELECT COUNT(1) FROM clients`).Scan(&count).Error; err != nil {
		t.Fatalf("count clients: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 client, got %d", count)
	}
}

func TestCreateClientRejectsUnderage(t *testing.T) {
	service, _ := setupClientService(t, newClientEmailStub())

	recent := time.Now().UTC().AddDate(-17, 0, 0).Format("2006-01-02")
	_, err := service.Create(context.Background(), domain.CreateClientRequest{
		Name:     "Jovem Demais",
		CPF:      "39053344705",
		Birthday: recent,
	})
	if !errors.Is(err, domain.ErrUnderage) {
		t.Fatalf("expected underage error, got %v", err)
	}
}

func TestGetWebProfileMasksPII(t *testing.T) {
	service, db := setupClientService(t, newClientEmailStub())

	node := mustNode(t)
	birthday := time.Date(1990, 12, 25, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO clients (id, name, cpf, birthday, cel, email, token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.Generate(), "Maria da Silva", "529.982.247-25", birthday,
		"(83) 98877-6655", "maria@example.com", "token-profile", now, now,
	).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	profile, err := service.GetWebProfile(context.Background(), "token-profile")
	if err != nil {
		t.Fatalf("web profile: %v", err)
	}
	if profile.CPF != "529.###.###-25" {
		t.Fatalf("cpf not masked: %q", profile.CPF)
	}
	if profile.Cel != "(83) 9####-6655" {
		t.Fatalf("cel not masked: %q", profile.Cel)
	}
	if profile.Email != "ma###@example.com" {
		t.Fatalf("email not masked: %q", profile.Email)
	}
	if profile.Birthday != "####-12-25" {
		t.Fatalf("birthday not masked: %q", profile.Birthday)
	}
	if profile.Name != "Maria da Silva" {
		t.Fatalf("name should stay readable, got %q", profile.Name)
	}
}

func TestUpdateWebSendsWelcomeOnce(t *testing.T) {
	emails := newClientEmailStub()
	service, db := setupClientService(t, emails)

	node := mustNode(t)
	now := time.Now().UTC()
	clientID := node.Generate()
	if err := db.Exec(
		`INSERT INTO clients (id, name, cpf, token, is_pre_register, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clientID, "", "529.982.247-25", "token-web", true, now, now,
	).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	profile, err := service.UpdateWeb(context.Background(), "token-web", domain.UpdateWebRequest{
		Name:     "Maria da Silva",
		Birthday: "1990-12-25",
		Cel:      "(83) 98877-6655",
		Email:    "maria@example.com",
	})
	if err != nil {
		t.Fatalf("update web: %v", err)
	}
	if profile.IsPreRegister {
		t.Fatalf("expected pre-register cleared")
	}

	select {
	case sent := <-emails.welcomes:
		if sent.to != "maria@example.com" {
			t.Fatalf("unexpected welcome recipient %q", sent.to)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("welcome email never sent")
	}

	// The sent-at stamp is written after the email goes out.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var sentAt *time.Time
		if err := db.Raw(`SELECT welcome_email_sent_at FROM clients WHERE id = ?`, clientID).Scan(&sentAt).Error; err != nil {
			t.Fatalf("read stamp: %v", err)
		}
		if sentAt != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("welcome email stamp never written")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A second profile update must not repeat the welcome email.
	if _, err := service.UpdateWeb(context.Background(), "token-web", domain.UpdateWebRequest{
		Name:     "Maria da Silva",
		Birthday: "1990-12-25",
		Cel:      "(83) 98877-6655",
	}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	select {
	case <-emails.welcomes:
		t.Fatalf("welcome email sent twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestGetWebSummary(t *testing.T) {
	service, db := setupClientService(t, newClientEmailStub())

	node := mustNode(t)
	now := time.Now().UTC()
	clientID := node.Generate()
	if err := db.Exec(
		`INSERT INTO clients (id, name, cpf, token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		clientID, "Maria", "529.982.247-25", "token-summary", now, now,
	).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	invoiceID := node.Generate()
	if err := db.Exec(
		`INSERT INTO invoices (id, fiscal_code, invoice_value, client_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		invoiceID, "NF-SUM", 400.0, clientID, now, now,
	).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	for i, used := range []bool{true, false} {
		var usedAt *time.Time
		if used {
			usedAt = &now
		}
		if err := db.Exec(
			`INSERT INTO game_opportunities (id, invoice_id, active, used_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			node.Generate(), invoiceID, true, usedAt, now, now,
		).Error; err != nil {
			t.Fatalf("seed opportunity %d: %v", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := db.Exec(
			`INSERT INTO draw_numbers (id, invoice_id, number, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			node.Generate(), invoiceID, int64(1000+i), true, now, now,
		).Error; err != nil {
			t.Fatalf("seed draw number %d: %v", i, err)
		}
	}

	summary, err := service.GetWebSummary(context.Background(), "token-summary")
	if err != nil {
		t.Fatalf("web summary: %v", err)
	}
	if summary.OpportunitiesTotal != 2 || summary.OpportunitiesNotUsed != 1 {
		t.Fatalf("unexpected opportunity counts: %+v", summary)
	}
	if summary.DrawNumbersTotal != 2 || summary.InvoicesTotal != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
}

func setupClientService(t *testing.T, emails *clientEmailStub) (domain.Service, *gorm.DB) {
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
	prepareClientSchema(t, db)

	service := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Repo:  clientrepository.Provide(),
		Email: emails,
	})

	return service, db
}

func prepareClientSchema(t *testing.T, db *gorm.DB) {
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
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
