package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/sortelabs/promo/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureRoles makes sure the three builtin roles exist.
func EnsureRoles(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range []string{userdomain.RoleAdmin, userdomain.RoleUser, userdomain.RoleWeb} {
			if _, err := ensureRoleTx(ctx, tx, node, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureDefaultAdmin seeds a bootstrap admin account so a fresh
// deployment can be administered without manual SQL.
func EnsureDefaultAdmin(db *gorm.DB, username, email, password string, bcryptCost int) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return errors.New("bootstrap admin credentials are required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adminRole, err := ensureRoleTx(ctx, tx, node, userdomain.RoleAdmin)
		if err != nil {
			return err
		}

		var user userdomain.User
		err = tx.WithContext(ctx).
			Where("email = ?", email).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = userdomain.User{
				ID:        node.Generate(),
				Username:  username,
				Email:     email,
				Password:  string(hashed),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var linked int64
		err = tx.WithContext(ctx).
			Table("user_roles").
			Where("user_id = ? AND role_id = ?", user.ID, adminRole.ID).
			Count(&linked).Error
		if err != nil {
			return err
		}
		if linked == 0 {
			return tx.WithContext(ctx).Exec(
				`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
				user.ID, adminRole.ID,
			).Error
		}
		return nil
	})
}

func ensureRoleTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (userdomain.Role, error) {
	var role userdomain.Role
	err := tx.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return userdomain.Role{}, err
	}

	role = userdomain.Role{ID: node.Generate(), Name: name}
	if err := tx.WithContext(ctx).Create(&role).Error; err != nil {
		return userdomain.Role{}, err
	}
	return role, nil
}
