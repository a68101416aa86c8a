package tokens

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	svc, err := NewTokenService("segredo", "1h")
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, err := svc.Generate(Claims{
		UserID:   "42",
		Username: "operador",
		Roles:    []string{"admin"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "42" || claims.Username != "operador" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.HasRole("admin") || claims.HasRole("web") {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("segredo-a", "1h")
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	verifier, err := NewTokenService("segredo-b", "1h")
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, err := issuer.Generate(Claims{UserID: "42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.Verify(signed); err == nil {
		t.Fatalf("expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc, err := NewTokenService("segredo", "1ns")
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, err := svc.Generate(Claims{UserID: "42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := svc.Verify(signed); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, err := NewTokenService("segredo", "1h")
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, err := svc.Generate(Claims{UserID: "42"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := svc.Verify(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", "1h"); err == nil {
		t.Fatalf("expected missing secret to be rejected")
	}
	if _, err := NewTokenService("segredo", "nonsense"); err == nil {
		t.Fatalf("expected malformed expiry to be rejected")
	}
}
