package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PageContent struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug      string       `gorm:"not null;uniqueIndex" json:"slug"`
	Title     string       `gorm:"not null" json:"title"`
	Content   string       `gorm:"type:text" json:"content"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PageContent) TableName() string {
	return "page_contents"
}
