package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DrawResult is the outcome of one try-my-luck attempt. Losing for
// lack of inventory and losing because the client already won produce
// the same message, so callers cannot probe voucher stock.
type DrawResult struct {
	Win     bool    `json:"win"`
	Message string  `json:"message"`
	Coupom  *string `json:"coupom,omitempty"`
}

// opportunity is read inside the claim transaction only.
type Opportunity struct {
	ID        snowflake.ID
	InvoiceID snowflake.ID
	CreatedAt time.Time
}

type LockedVoucher struct {
	ID           snowflake.ID
	Coupom       string
	VoucherValue float64
}
