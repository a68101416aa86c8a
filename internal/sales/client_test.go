package sales

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestFiscalSummarySuccess(t *testing.T) {
	var gotPath, gotUser, gotPassword string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPassword, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"fiscal_code": "NF-100",
			"total_value": 325.5,
			"partner_code": "PARC-9",
			"pdv": "3",
			"store": "Loja 12",
			"num_coupon": "778",
			"cnpj": "11222333000144",
			"payments": [
				{"type": "creditcard", "brand": "visa"},
				{"type": "cash"}
			],
			"items": [
				{"ean": "7891000100103", "quantity": 2},
				{"ean": "  ", "quantity": 1}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:  server.URL,
		User:     "promo",
		Password: "s3cret",
	}, zap.NewNop())

	summary, err := client.FiscalSummary(context.Background(), "NF-100")
	if err != nil {
		t.Fatalf("fiscal summary: %v", err)
	}

	if gotPath != "/sales/NF-100" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotUser != "promo" || gotPassword != "s3cret" {
		t.Fatalf("basic auth not forwarded: %q / %q", gotUser, gotPassword)
	}
	if summary.TotalValue != 325.5 {
		t.Fatalf("unexpected total %v", summary.TotalValue)
	}
	if !summary.HasCreditcard() {
		t.Fatalf("expected creditcard payment")
	}
	if !summary.HasPartnerCode() {
		t.Fatalf("expected partner code")
	}
	if summary.Creditcard != "visa" {
		t.Fatalf("expected first card brand, got %q", summary.Creditcard)
	}
	if len(summary.EANs) != 1 || summary.EANs[0] != "7891000100103" {
		t.Fatalf("expected blank EANs dropped, got %v", summary.EANs)
	}
	if summary.Store != "Loja 12" || summary.PDV != "3" || summary.NumCoupon != "778" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestFiscalSummaryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())
	_, err := client.FiscalSummary(context.Background(), "NF-404")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestFiscalSummaryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())
	_, err := client.FiscalSummary(context.Background(), "NF-500")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestFiscalSummaryMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_value": "muito"`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())
	_, err := client.FiscalSummary(context.Background(), "NF-600")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestFiscalSummaryNotConfigured(t *testing.T) {
	client := NewClient(Config{}, zap.NewNop())
	_, err := client.FiscalSummary(context.Background(), "NF-700")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestSummaryPaymentChecks(t *testing.T) {
	if (Summary{PaymentMethods: []string{"cash"}}).HasCreditcard() {
		t.Fatalf("cash should not count as creditcard")
	}
	if !(Summary{PaymentMethods: []string{" Credit_Card "}}).HasCreditcard() {
		t.Fatalf("credit_card spelling should count")
	}
	if (Summary{PartnerCode: "  "}).HasPartnerCode() {
		t.Fatalf("blank partner code should not count")
	}
}
