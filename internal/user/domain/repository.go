package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, db *gorm.DB, email, username string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListUserFilter, page pagination.Pagination) ([]*User, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	FindRoleByName(ctx context.Context, db *gorm.DB, name string) (*Role, error)
	LinkRole(ctx context.Context, db *gorm.DB, userID, roleID snowflake.ID) error
	RolesForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error)
}
