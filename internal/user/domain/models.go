package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Username  string       `gorm:"not null;uniqueIndex" json:"username"`
	Email     string       `gorm:"not null;uniqueIndex" json:"email"`
	Password  string       `gorm:"not null" json:"-"`
	Roles     []string     `gorm:"-" json:"roles,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null;uniqueIndex" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleWeb   = "web"
)
