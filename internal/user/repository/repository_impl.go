package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/user/domain"
	"github.com/sortelabs/promo/pkg/db/option"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, username, email, password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return r.findOne(ctx, db, "email = ?", email)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, value any) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, username, email, password, created_at, updated_at
		 FROM users WHERE `+cond,
		value,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	roles, err := r.RolesForUser(ctx, db, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (r *repo) ExistsByEmailOrUsername(ctx context.Context, db *gorm.DB, email, username string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListUserFilter, page pagination.Pagination) ([]*domain.User, error) {
	var users []*domain.User
	stmt := db.WithContext(ctx).Model(&domain.User{})
	if filter.Username != "" {
		stmt = stmt.Where("username LIKE ?", "%"+filter.Username+"%")
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET username = ?, email = ?, password = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.Password,
		user.UpdatedAt,
		user.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM user_roles WHERE user_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM users WHERE id = ?`, id).Error
}

func (r *repo) FindRoleByName(ctx context.Context, db *gorm.DB, name string) (*domain.Role, error) {
	var role domain.Role
	err := db.WithContext(ctx).Raw(
		`SELECT id, name FROM roles WHERE name = ?`,
		name,
	).Scan(&role).Error
	if err != nil {
		return nil, err
	}
	if role.ID == 0 {
		return nil, nil
	}
	return &role, nil
}

func (r *repo) LinkRole(ctx context.Context, db *gorm.DB, userID, roleID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID,
		roleID,
	).Error
}

func (r *repo) RolesForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error) {
	var roles []string
	err := db.WithContext(ctx).Raw(
		`SELECT r.name
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?`,
		userID,
	).Scan(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
