package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	"github.com/sortelabs/promo/internal/gameopportunity/domain"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("gameopportunity.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateGameOpportunityRequest) (domain.GameOpportunity, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return domain.GameOpportunity{}, domain.ErrInvalidID
	}

	now := time.Now().UTC()
	opportunity := domain.GameOpportunity{
		ID:        s.genID.Generate(),
		InvoiceID: invoiceID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &opportunity); err != nil {
		return domain.GameOpportunity{}, err
	}

	s.audit(ctx, "game_opportunity.create", opportunity.ID)
	return opportunity, nil
}

func (s *Service) List(ctx context.Context, req domain.ListGameOpportunityRequest) (domain.ListGameOpportunityResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListGameOpportunityResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(view *domain.GameOpportunityView) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        view.ID.String(),
			CreatedAt: view.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	opportunities := make([]domain.GameOpportunityView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		opportunities = append(opportunities, *item)
	}

	resp := domain.ListGameOpportunityResponse{Opportunities: opportunities}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.GameOpportunityView, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.GameOpportunityView{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.GameOpportunityView{}, err
	}
	if item == nil {
		return domain.GameOpportunityView{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateGameOpportunityRequest) (domain.GameOpportunity, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.GameOpportunity{}, err
	}

	view, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.GameOpportunity{}, err
	}
	if view == nil {
		return domain.GameOpportunity{}, domain.ErrNotFound
	}

	item := view.GameOpportunity
	if req.Gift != nil {
		item.Gift = strings.TrimSpace(*req.Gift)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.UsedAt != nil {
		if strings.TrimSpace(*req.UsedAt) == "" {
			item.UsedAt = nil
		} else {
			usedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.UsedAt))
			if err != nil {
				return domain.GameOpportunity{}, domain.ErrInvalidUsedAt
			}
			utc := usedAt.UTC()
			item.UsedAt = &utc
		}
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		return domain.GameOpportunity{}, err
	}

	s.audit(ctx, "game_opportunity.update", item.ID)
	return item, nil
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
	if err := s.repo.Delete(ctx, s.db, parsed); err != nil {
		return err
	}

	s.audit(ctx, "game_opportunity.delete", parsed)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "game_opportunities", &targetID, nil)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
