package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Invoice is a registered fiscal coupon. Each invoice yields zero or
// more game opportunities and the same count of draw numbers, all
// created in one transaction.
type Invoice struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id,string"`
	FiscalCode     string       `gorm:"uniqueIndex" json:"fiscal_code"`
	InvoiceValue   float64      `json:"invoice_value"`
	HasItem        bool         `json:"has_item"`
	HasCreditcard  bool         `json:"has_creditcard"`
	HasPartnerCode bool         `json:"has_partner_code"`
	PDV            string       `json:"pdv"`
	Store          string       `json:"store"`
	NumCoupon      string       `json:"num_coupon"`
	CNPJ           string       `json:"cnpj"`
	Creditcard     string       `json:"creditcard"`
	ClientID       snowflake.ID `json:"client_id,string"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceView joins the owning client for admin listings.
type InvoiceView struct {
	Invoice
	ClientName string `json:"client_name"`
}
