package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/product/domain"
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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	ean := strings.TrimSpace(req.EAN)
	if ean == "" {
		return domain.Product{}, domain.ErrInvalidEAN
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		EAN:         ean,
		Description: strings.TrimSpace(req.Description),
		Brand:       strings.TrimSpace(req.Brand),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateEAN
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	filter := domain.ListProductFilter{
		EAN:         strings.TrimSpace(req.EAN),
		Description: strings.TrimSpace(req.Description),
		Brand:       strings.TrimSpace(req.Brand),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        product.ID.String(),
			CreatedAt: product.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	resp := domain.ListProductResponse{Products: products}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.Product, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	if req.EAN != nil {
		ean := strings.TrimSpace(*req.EAN)
		if ean == "" {
			return domain.Product{}, domain.ErrInvalidEAN
		}
		item.EAN = ean
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Brand != nil {
		item.Brand = strings.TrimSpace(*req.Brand)
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateEAN
		}
		return domain.Product{}, err
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

// ExistsAnyEAN reports whether any of the given EANs is a tracked product.
func (s *Service) ExistsAnyEAN(ctx context.Context, eans []string) (bool, error) {
	cleaned := make([]string, 0, len(eans))
	for _, ean := range eans {
		if trimmed := strings.TrimSpace(ean); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return false, nil
	}
	count, err := s.repo.CountByEANs(ctx, s.db, cleaned)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
