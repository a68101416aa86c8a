package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Voucher struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	Coupom            string        `gorm:"not null" json:"coupom"`
	DrawDate          time.Time     `gorm:"not null" json:"draw_date"`
	VoucherValue      float64       `gorm:"not null" json:"voucher_value"`
	GameOpportunityID *snowflake.ID `gorm:"index" json:"game_opportunity_id,omitempty"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// DrawnVoucher is the public view of a claimed voucher.
type DrawnVoucher struct {
	DrawDate time.Time `json:"drawDate"`
	Name     string    `json:"name"`
	CPF      string    `json:"cpf"`
}
