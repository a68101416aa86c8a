package option

import (
	"time"

	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB {
	return f(stmt)
}

// ApplyPagination applies a cursor token and page size. It fetches one
// extra row so callers can detect whether more pages exist.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 10
		}
		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err == nil && cursor.CreatedAt != "" {
				if ts, parseErr := time.Parse(time.RFC3339, cursor.CreatedAt); parseErr == nil {
					stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", ts, ts, cursor.ID)
				}
			}
		}
		return stmt.Limit(size + 1)
	})
}
