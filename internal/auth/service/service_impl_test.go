package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/sortelabs/promo/internal/auth/domain"
	"github.com/sortelabs/promo/internal/auth/tokens"
	clientrepository "github.com/sortelabs/promo/internal/client/repository"
	"github.com/sortelabs/promo/internal/clock"
	"github.com/sortelabs/promo/internal/config"
	userdomain "github.com/sortelabs/promo/internal/user/domain"
	userrepository "github.com/sortelabs/promo/internal/user/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// validCPF passes the verifier digit check.
const validCPF = "52998224725"

type securityEmail struct {
	to     string
	bundle string
}

type authEmailStub struct {
	security []securityEmail
}

func (e *authEmailStub) SendWelcome(ctx context.Context, to, name string) error { return nil }

func (e *authEmailStub) SendSecurityAuthorization(ctx context.Context, to, name, token string) error {
	e.security = append(e.security, securityEmail{to: to, bundle: token})
	return nil
}

func (e *authEmailStub) SendVoucherWinner(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (e *authEmailStub) SendAdjustmentVoucher(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (e *authEmailStub) SendDrawWinner(ctx context.Context, to, name string) error { return nil }

func TestRegisterAndLogin(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	service, _, tokenSvc := setupAuthService(t, fake, &authEmailStub{})

	created, err := service.Register(context.Background(), authdomain.RegisterRequest{
		Username: "operador",
		Email:    "Operador@Example.com",
		Password: "segredo-forte",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Username != "operador" {
		t.Fatalf("unexpected username %q", created.Username)
	}

	_, err = service.Register(context.Background(), authdomain.RegisterRequest{
		Username: "operador",
		Email:    "outro@example.com",
		Password: "segredo-forte",
	})
	if !errors.Is(err, authdomain.ErrDuplicateUser) {
		t.Fatalf("expected duplicate user error, got %v", err)
	}

	resp, err := service.Login(context.Background(), authdomain.LoginRequest{
		Email:    "operador@example.com",
		Password: "segredo-forte",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := tokenSvc.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.UserID != created.ID || claims.Username != "operador" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.HasRole(userdomain.RoleUser) {
		t.Fatalf("expected role %q in %v", userdomain.RoleUser, claims.Roles)
	}

	_, err = service.Login(context.Background(), authdomain.LoginRequest{
		Email:    "operador@example.com",
		Password: "senha-errada",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = service.Login(context.Background(), authdomain.LoginRequest{
		Email:    "ninguem@example.com",
		Password: "segredo-forte",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestWebLoginPreRegister(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	service, db, tokenSvc := setupAuthService(t, fake, &authEmailStub{})

	resp, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-1",
	})
	if err != nil {
		t.Fatalf("web login: %v", err)
	}

	claims, err := tokenSvc.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.ClientToken == "" || !claims.HasRole(userdomain.RoleWeb) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var row struct {
		CPF           string
		SecurityToken string
		IsPreRegister bool
	}
	if err := db.Raw(`SELECT cpf, security_token, is_pre_register FROM clients WHERE token = ?`, claims.ClientToken).Scan(&row).Error; err != nil {
		t.Fatalf("read client: %v", err)
	}
	if row.CPF != "529.982.247-25" {
		t.Fatalf("expected formatted cpf, got %q", row.CPF)
	}
	if row.SecurityToken != "device-1" || !row.IsPreRegister {
		t.Fatalf("unexpected client row: %+v", row)
	}

	// Same device logs straight back in.
	if _, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-1",
	}); err != nil {
		t.Fatalf("repeat login: %v", err)
	}
}

func TestWebLoginAdoptsFirstDevice(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	service, db, _ := setupAuthService(t, fake, &authEmailStub{})

	node := mustNode(t)
	clientID := node.Generate()
	seedAuthClient(t, db, clientID, "529.982.247-25", "client-token", "", "")

	if _, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-new",
	}); err != nil {
		t.Fatalf("web login: %v", err)
	}

	var stored string
	if err := db.Raw(`SELECT security_token FROM clients WHERE id = ?`, clientID).Scan(&stored).Error; err != nil {
		t.Fatalf("read client: %v", err)
	}
	if stored != "device-new" {
		t.Fatalf("expected device adopted, got %q", stored)
	}
}

func TestWebLoginDifferentDevice(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	emails := &authEmailStub{}
	service, db, _ := setupAuthService(t, fake, emails)

	node := mustNode(t)
	clientID := node.Generate()
	seedAuthClient(t, db, clientID, "529.982.247-25", "client-token", "device-a", "joana@example.com")

	_, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-b",
	})
	if !errors.Is(err, authdomain.ErrDifferentDevice) {
		t.Fatalf("expected different device error, got %v", err)
	}
	if len(emails.security) != 1 || emails.security[0].to != "joana@example.com" {
		t.Fatalf("expected one authorization email, got %+v", emails.security)
	}

	bundle, ok := tokens.DecodeSecurityBundle(emails.security[0].bundle)
	if !ok {
		t.Fatalf("authorization email carried a malformed bundle")
	}
	if bundle.ClientToken != "client-token" || bundle.OldSecurityToken != "device-a" || bundle.NewSecurityToken != "device-b" {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}

	// Within the resend window the email is not sent again.
	fake.Advance(5 * time.Minute)
	_, err = service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-b",
	})
	if !errors.Is(err, authdomain.ErrSecurityEmailSent) {
		t.Fatalf("expected resend throttle, got %v", err)
	}
	if len(emails.security) != 1 {
		t.Fatalf("expected no second email, got %d", len(emails.security))
	}

	fake.Advance(11 * time.Minute)
	_, err = service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-b",
	})
	if !errors.Is(err, authdomain.ErrDifferentDevice) {
		t.Fatalf("expected a fresh authorization email after the window, got %v", err)
	}
	if len(emails.security) != 2 {
		t.Fatalf("expected a second email, got %d", len(emails.security))
	}
}

func TestWebLoginRejectsBadInput(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	service, _, _ := setupAuthService(t, fake, &authEmailStub{})

	_, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           "12345678900",
		SecurityToken: "device-1",
	})
	if !errors.Is(err, authdomain.ErrInvalidCPF) {
		t.Fatalf("expected invalid cpf error, got %v", err)
	}

	_, err = service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           "  ",
		SecurityToken: "device-1",
	})
	if !errors.Is(err, authdomain.ErrIncompleteData) {
		t.Fatalf("expected incomplete data error, got %v", err)
	}
}

func TestUpdateSecurityToken(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	emails := &authEmailStub{}
	service, db, _ := setupAuthService(t, fake, emails)

	node := mustNode(t)
	clientID := node.Generate()
	seedAuthClient(t, db, clientID, "529.982.247-25", "client-token", "device-a", "joana@example.com")

	_, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-b",
	})
	if !errors.Is(err, authdomain.ErrDifferentDevice) {
		t.Fatalf("expected different device error, got %v", err)
	}
	bundle := emails.security[0].bundle

	if err := service.UpdateSecurityToken(context.Background(), authdomain.UpdateSecurityTokenRequest{
		Token: bundle,
	}); err != nil {
		t.Fatalf("update security token: %v", err)
	}

	var stored string
	if err := db.Raw(`SELECT security_token FROM clients WHERE id = ?`, clientID).Scan(&stored).Error; err != nil {
		t.Fatalf("read client: %v", err)
	}
	if stored != "device-b" {
		t.Fatalf("expected new device authorized, got %q", stored)
	}

	// The new device now logs in without another email round trip.
	if _, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-b",
	}); err != nil {
		t.Fatalf("login after authorization: %v", err)
	}

	if err := service.UpdateSecurityToken(context.Background(), authdomain.UpdateSecurityTokenRequest{
		Token: "nao-e-um-bundle",
	}); !errors.Is(err, authdomain.ErrInvalidBundle) {
		t.Fatalf("expected invalid bundle error, got %v", err)
	}
}

func TestUpdateSecurityTokenExpiredBundle(t *testing.T) {
	fake := clock.NewFakeClock(time.Now())
	emails := &authEmailStub{}
	service, db, _ := setupAuthService(t, fake, emails)

	node := mustNode(t)
	clientID := node.Generate()
	seedAuthClient(t, db, clientID, "529.982.247-25", "client-token", "device-a", "joana@example.com")

	_, err := service.WebLogin(context.Background(), authdomain.WebLoginRequest{
		CPF:           validCPF,
		SecurityToken: "device-b",
	})
	if !errors.Is(err, authdomain.ErrDifferentDevice) {
		t.Fatalf("expected different device error, got %v", err)
	}

	fake.Advance(16 * time.Minute)
	err = service.UpdateSecurityToken(context.Background(), authdomain.UpdateSecurityTokenRequest{
		Token: emails.security[0].bundle,
	})
	if !errors.Is(err, authdomain.ErrExpiredBundle) {
		t.Fatalf("expected expired bundle error, got %v", err)
	}
}

func setupAuthService(t *testing.T, clk clock.Clock, emails *authEmailStub) (authdomain.Service, *gorm.DB, *tokens.TokenService) {
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
	prepareAuthSchema(t, db)

	tokenSvc, err := tokens.NewTokenService("test-secret", "1h")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	service := New(Params{
		Config:     config.Config{BcryptCost: bcrypt.MinCost},
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      mustNode(t),
		Clock:      clk,
		Tokens:     tokenSvc,
		UserRepo:   userrepository.Provide(),
		ClientRepo: clientrepository.Provide(),
		Email:      emails,
	})

	return service, db, tokenSvc
}

func prepareAuthSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	statements := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX uidx_users_username ON users (username)`,
		`CREATE UNIQUE INDEX uidx_users_email ON users (email)`,
		`CREATE TABLE roles (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE user_roles (
			user_id BIGINT NOT NULL,
			role_id BIGINT NOT NULL,
			PRIMARY KEY (user_id, role_id)
		)`,
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
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}

	node := mustNode(t)
	now := time.Now().UTC()
	for _, role := range []string{userdomain.RoleAdmin, userdomain.RoleUser} {
		if err := db.Exec(
			`INSERT INTO roles (id, name, created_at) VALUES (?, ?, ?)`,
			node.Generate(), role, now,
		).Error; err != nil {
			t.Fatalf("seed role %s: %v", role, err)
		}
	}
}

func seedAuthClient(t *testing.T, db *gorm.DB, id snowflake.ID, formattedCPF, token, securityToken, email string) {
	t.Helper()

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO clients (id, name, cpf, email, token, security_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "Joana Lima", formattedCPF, email, token, securityToken, now, now,
	).Error; err != nil {
		t.Fatalf("seed client: %v", err)
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
