package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type GameOpportunity struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Gift      string       `json:"gift"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (GameOpportunity) TableName() string {
	return "game_opportunities"
}

// GameOpportunityView joins invoice and client data for admin listings.
type GameOpportunityView struct {
	GameOpportunity
	ClientName string `gorm:"column:client_name" json:"client_name"`
	FiscalCode string `gorm:"column:fiscal_code" json:"fiscal_code"`
}
