package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Client struct {
	ID                       snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                     string       `json:"name"`
	CPF                      string       `gorm:"column:cpf;not null;uniqueIndex" json:"cpf"`
	Birthday                 *time.Time   `json:"birthday,omitempty"`
	Cel                      string       `json:"cel"`
	Email                    string       `json:"email"`
	Token                    string       `gorm:"not null;uniqueIndex" json:"-"`
	SecurityToken            string       `json:"-"`
	SecurityTokenEmailSentAt *time.Time   `gorm:"column:security_token_email_sent_at" json:"-"`
	WelcomeEmailSentAt       *time.Time   `gorm:"column:welcome_email_sent_at" json:"welcome_email_sent_at,omitempty"`
	IsPreRegister            bool         `gorm:"not null;default:false" json:"is_pre_register"`
	IsMegaWinner             bool         `gorm:"not null;default:false" json:"is_mega_winner"`
	CreatedAt                time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// WebSummary aggregates a participant's progress in the campaign.
type WebSummary struct {
	OpportunitiesTotal   int64 `json:"opportunitiesTotal"`
	OpportunitiesNotUsed int64 `json:"opportunitiesNotUsed"`
	DrawNumbersTotal     int64 `json:"drawNumbersTotal"`
	InvoicesTotal        int64 `json:"invoicesTotal"`
}

// WebProfile is the masked view returned to web participants.
type WebProfile struct {
	Name          string `json:"name"`
	CPF           string `json:"cpf"`
	Birthday      string `json:"birthday,omitempty"`
	Cel           string `json:"cel,omitempty"`
	Email         string `json:"email,omitempty"`
	IsPreRegister bool   `json:"isPreRegister"`
	IsMegaWinner  bool   `json:"isMegaWinner"`
}
