package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/config"
	"github.com/sortelabs/promo/internal/user/domain"
	pkgdb "github.com/sortelabs/promo/pkg/db"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}
	emailAddr := strings.TrimSpace(req.Email)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}

	roleName := strings.TrimSpace(req.Role)
	if roleName == "" {
		roleName = domain.RoleUser
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        s.genID.Generate(),
		Username:  username,
		Email:     emailAddr,
		Password:  string(hashed),
		Roles:     []string{roleName},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.repo.ExistsByEmailOrUsername(ctx, tx, emailAddr, username)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateUser
		}

		role, err := s.repo.FindRoleByName(ctx, tx, roleName)
		if err != nil {
			return err
		}
		if role == nil {
			return domain.ErrRoleNotFound
		}

		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateUser
			}
			return err
		}
		return s.repo.LinkRole(ctx, tx, user.ID, role.ID)
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListUserRequest) (domain.ListUserResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListUserFilter{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListUserResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(user *domain.User) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        user.ID.String(),
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}

	resp := domain.ListUserResponse{Users: users}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.User{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.User{}, err
	}
	if item == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.User{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.User{}, err
	}
	if item == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return domain.User{}, domain.ErrInvalidUsername
		}
		item.Username = username
	}
	if req.Email != nil {
		emailAddr := strings.TrimSpace(*req.Email)
		if emailAddr == "" || !strings.Contains(emailAddr, "@") {
			return domain.User{}, domain.ErrInvalidEmail
		}
		item.Email = emailAddr
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return domain.User{}, domain.ErrInvalidPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cfg.BcryptCost)
		if err != nil {
			return domain.User{}, err
		}
		item.Password = string(hashed)
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrDuplicateUser
		}
		return domain.User{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, parsed)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
