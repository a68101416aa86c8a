package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DrawNumber is a lottery number handed to a client for each chance
// earned by a registered invoice. Numbers are unique across the whole
// campaign.
type DrawNumber struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id,string"`
	InvoiceID   snowflake.ID `json:"invoice_id,string"`
	Number      int64        `gorm:"uniqueIndex" json:"number"`
	Active      bool         `gorm:"default:true" json:"active"`
	WinnerAt    *time.Time   `json:"winner_at,omitempty"`
	EmailSentAt *time.Time   `json:"email_sent_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (DrawNumber) TableName() string { return "draw_numbers" }

// DrawNumberView joins the owning invoice and client for listings.
type DrawNumberView struct {
	DrawNumber
	FiscalCode string `json:"fiscal_code"`
	ClientName string `json:"client_name"`
}

type DrawNumberCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
