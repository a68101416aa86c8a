package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindOldestOpportunity returns the client's oldest active, unused
	// game opportunity, or nil when none is left.
	FindOldestOpportunity(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*Opportunity, error)
	// HasPriorWin reports whether any voucher is already linked to one
	// of the client's opportunities.
	HasPriorWin(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (bool, error)
	// LockEligibleVoucher selects one unclaimed voucher whose draw date
	// has passed, under a row-level exclusive lock. Must run inside a
	// transaction.
	LockEligibleVoucher(ctx context.Context, tx *gorm.DB, now time.Time) (*LockedVoucher, error)
	ClaimVoucher(ctx context.Context, tx *gorm.DB, voucherID, opportunityID snowflake.ID) error
	MarkOpportunityUsed(ctx context.Context, tx *gorm.DB, opportunityID snowflake.ID, gift string, usedAt time.Time) error
}
