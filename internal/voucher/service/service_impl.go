package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/voucher/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"github.com/sortelabs/promo/pkg/mask"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const drawDateLayout = "2006-01-02"

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
		log:   p.Log.Named("voucher.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVoucherRequest) (domain.Voucher, error) {
	coupom := strings.TrimSpace(req.Coupom)
	if coupom == "" {
		return domain.Voucher{}, domain.ErrInvalidCoupom
	}
	drawDate, err := parseDrawDate(req.DrawDate)
	if err != nil {
		return domain.Voucher{}, err
	}
	if req.VoucherValue <= 0 {
		return domain.Voucher{}, domain.ErrInvalidValue
	}

	now := time.Now().UTC()
	voucher := domain.Voucher{
		ID:           s.genID.Generate(),
		Coupom:       coupom,
		DrawDate:     drawDate,
		VoucherValue: req.VoucherValue,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &voucher); err != nil {
		return domain.Voucher{}, err
	}
	return voucher, nil
}

func (s *Service) List(ctx context.Context, req domain.ListVoucherRequest) (domain.ListVoucherResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListVoucherFilter{
		Coupom:  strings.TrimSpace(req.Coupom),
		Claimed: req.Claimed,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListVoucherResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(voucher *domain.Voucher) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        voucher.ID.String(),
			CreatedAt: voucher.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	vouchers := make([]domain.Voucher, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		vouchers = append(vouchers, *item)
	}

	resp := domain.ListVoucherResponse{Vouchers: vouchers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Voucher, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Voucher{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Voucher{}, err
	}
	if item == nil {
		return domain.Voucher{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateVoucherRequest) (domain.Voucher, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.Voucher{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Voucher{}, err
	}
	if item == nil {
		return domain.Voucher{}, domain.ErrNotFound
	}

	if req.Coupom != nil {
		coupom := strings.TrimSpace(*req.Coupom)
		if coupom == "" {
			return domain.Voucher{}, domain.ErrInvalidCoupom
		}
		item.Coupom = coupom
	}
	if req.DrawDate != nil {
		drawDate, err := parseDrawDate(*req.DrawDate)
		if err != nil {
			return domain.Voucher{}, err
		}
		item.DrawDate = drawDate
	}
	if req.VoucherValue != nil {
		if *req.VoucherValue <= 0 {
			return domain.Voucher{}, domain.ErrInvalidValue
		}
		item.VoucherValue = *req.VoucherValue
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Voucher{}, err
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

// ListDrawn returns claimed vouchers with winner identity masked.
func (s *Service) ListDrawn(ctx context.Context) ([]domain.DrawnVoucher, error) {
	items, err := s.repo.ListDrawn(ctx, s.db)
	if err != nil {
		return nil, err
	}

	drawn := make([]domain.DrawnVoucher, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		drawn = append(drawn, domain.DrawnVoucher{
			DrawDate: item.DrawDate,
			Name:     mask.Name(item.Name),
			CPF:      mask.CPF(item.CPF),
		})
	}
	return drawn, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseDrawDate(value string) (time.Time, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return time.Time{}, domain.ErrInvalidDrawDate
	}
	if parsed, err := time.Parse(time.RFC3339, cleaned); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(drawDateLayout, cleaned)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDrawDate
	}
	return parsed.UTC(), nil
}
