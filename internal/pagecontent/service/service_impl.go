package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sortelabs/promo/internal/pagecontent/domain"
	pkgdb "github.com/sortelabs/promo/pkg/db"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pagecontent.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePageContentRequest) (domain.PageContent, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.PageContent{}, domain.ErrInvalidTitle
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	page := domain.PageContent{
		ID:        s.genID.Generate(),
		Slug:      slug.Make(title),
		Title:     title,
		Content:   req.Content,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &page); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.PageContent{}, domain.ErrDuplicateSlug
		}
		return domain.PageContent{}, err
	}
	return page, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPageContentRequest) (domain.ListPageContentResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListPageContentFilter{
		Slug:   strings.TrimSpace(req.Slug),
		Active: req.Active,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListPageContentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(page *domain.PageContent) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        page.ID.String(),
			CreatedAt: page.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	pages := make([]domain.PageContent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		pages = append(pages, *item)
	}

	resp := domain.ListPageContentResponse{Pages: pages}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.PageContent, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.PageContent{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.PageContent{}, err
	}
	if item == nil {
		return domain.PageContent{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetBySlug(ctx context.Context, rawSlug string) (domain.PageContent, error) {
	cleaned := strings.TrimSpace(rawSlug)
	if cleaned == "" {
		return domain.PageContent{}, domain.ErrInvalidSlug
	}

	item, err := s.repo.FindBySlug(ctx, s.db, cleaned)
	if err != nil {
		return domain.PageContent{}, err
	}
	if item == nil || !item.Active {
		return domain.PageContent{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePageContentRequest) (domain.PageContent, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.PageContent{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.PageContent{}, err
	}
	if item == nil {
		return domain.PageContent{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.PageContent{}, domain.ErrInvalidTitle
		}
		item.Title = title
		item.Slug = slug.Make(title)
	}
	if req.Content != nil {
		item.Content = *req.Content
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.PageContent{}, domain.ErrDuplicateSlug
		}
		return domain.PageContent{}, err
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
