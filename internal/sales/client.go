package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("sales_api_not_configured")
	ErrUnavailable   = errors.New("sales_api_unavailable")
	ErrNotFound      = errors.New("sale_not_found")
)

// Summary is the slice of a sale the campaign cares about: the total
// paid, how it was paid, and which products were in the basket.
type Summary struct {
	FiscalCode     string
	TotalValue     float64
	PaymentMethods []string
	PartnerCode    string
	PDV            string
	Store          string
	NumCoupon      string
	CNPJ           string
	Creditcard     string
	EANs           []string
}

// HasCreditcard reports whether any payment line was settled with a
// credit card.
func (s Summary) HasCreditcard() bool {
	for _, method := range s.PaymentMethods {
		if strings.EqualFold(strings.TrimSpace(method), "creditcard") ||
			strings.EqualFold(strings.TrimSpace(method), "credit_card") {
			return true
		}
	}
	return false
}

func (s Summary) HasPartnerCode() bool {
	return strings.TrimSpace(s.PartnerCode) != ""
}

type Client interface {
	FiscalSummary(ctx context.Context, fiscalCode string) (*Summary, error)
}

type Config struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
}

type httpClient struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.Named("sales.client"),
	}
}

type saleResponse struct {
	FiscalCode  string  `json:"fiscal_code"`
	TotalValue  float64 `json:"total_value"`
	PartnerCode string  `json:"partner_code"`
	PDV         string  `json:"pdv"`
	Store       string  `json:"store"`
	NumCoupon   string  `json:"num_coupon"`
	CNPJ        string  `json:"cnpj"`
	Payments    []struct {
		Type  string `json:"type"`
		Brand string `json:"brand"`
	} `json:"payments"`
	Items []struct {
		EAN      string  `json:"ean"`
		Quantity float64 `json:"quantity"`
	} `json:"items"`
}

func (c *httpClient) FiscalSummary(ctx context.Context, fiscalCode string) (*Summary, error) {
	if strings.TrimSpace(c.cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/sales/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(strings.TrimSpace(fiscalCode)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.User != "" {
		req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("sales api request failed", zap.Error(err))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		c.log.Warn("sales api returned unexpected status", zap.Int("status", resp.StatusCode))
		return nil, ErrUnavailable
	}

	var sale saleResponse
	if err := json.NewDecoder(resp.Body).Decode(&sale); err != nil {
		c.log.Warn("sales api returned malformed payload", zap.Error(err))
		return nil, ErrUnavailable
	}
	if sale.TotalValue < 0 {
		return nil, ErrUnavailable
	}

	summary := &Summary{
		FiscalCode:  strings.TrimSpace(fiscalCode),
		TotalValue:  sale.TotalValue,
		PartnerCode: strings.TrimSpace(sale.PartnerCode),
		PDV:         sale.PDV,
		Store:       sale.Store,
		NumCoupon:   sale.NumCoupon,
		CNPJ:        sale.CNPJ,
	}
	for _, payment := range sale.Payments {
		summary.PaymentMethods = append(summary.PaymentMethods, payment.Type)
		if summary.Creditcard == "" && payment.Brand != "" {
			summary.Creditcard = payment.Brand
		}
	}
	for _, item := range sale.Items {
		if ean := strings.TrimSpace(item.EAN); ean != "" {
			summary.EANs = append(summary.EANs, ean)
		}
	}
	return summary, nil
}
