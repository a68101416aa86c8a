package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Product struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	EAN         string       `gorm:"column:ean;not null;uniqueIndex" json:"ean"`
	Description string       `gorm:"not null" json:"description"`
	Brand       string       `json:"brand"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
