package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	"github.com/sortelabs/promo/internal/drawnumber/domain"
	pkgdb "github.com/sortelabs/promo/pkg/db"
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
		log:      p.Log.Named("drawnumber.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDrawNumberRequest) (domain.DrawNumber, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return domain.DrawNumber{}, domain.ErrInvalidID
	}
	if req.Number <= 0 {
		return domain.DrawNumber{}, domain.ErrInvalidNumber
	}

	now := time.Now().UTC()
	number := domain.DrawNumber{
		ID:        s.genID.Generate(),
		InvoiceID: invoiceID,
		Number:    req.Number,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &number); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.DrawNumber{}, domain.ErrDuplicateNumber
		}
		return domain.DrawNumber{}, err
	}

	s.audit(ctx, "draw_number.create", number.ID)
	return number, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDrawNumberRequest) (domain.ListDrawNumberResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListDrawNumberResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(view *domain.DrawNumberView) string {
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

	numbers := make([]domain.DrawNumberView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		numbers = append(numbers, *item)
	}

	resp := domain.ListDrawNumberResponse{DrawNumbers: numbers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.DrawNumberView, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.DrawNumberView{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.DrawNumberView{}, err
	}
	if item == nil {
		return domain.DrawNumberView{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDrawNumberRequest) (domain.DrawNumber, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.DrawNumber{}, err
	}

	view, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.DrawNumber{}, err
	}
	if view == nil {
		return domain.DrawNumber{}, domain.ErrNotFound
	}

	item := view.DrawNumber
	if req.Number != nil {
		if *req.Number <= 0 {
			return domain.DrawNumber{}, domain.ErrInvalidNumber
		}
		item.Number = *req.Number
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.WinnerAt != nil {
		winnerAt, err := parseOptionalTime(*req.WinnerAt)
		if err != nil {
			return domain.DrawNumber{}, err
		}
		item.WinnerAt = winnerAt
	}
	if req.EmailSentAt != nil {
		sentAt, err := parseOptionalTime(*req.EmailSentAt)
		if err != nil {
			return domain.DrawNumber{}, err
		}
		item.EmailSentAt = sentAt
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.DrawNumber{}, domain.ErrDuplicateNumber
		}
		return domain.DrawNumber{}, err
	}

	s.audit(ctx, "draw_number.update", item.ID)
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

	s.audit(ctx, "draw_number.delete", parsed)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "draw_numbers", &targetID, nil)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseOptionalTime treats an empty string as a request to clear the field.
func parseOptionalTime(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, domain.ErrInvalidTimestamp
	}
	utc := parsed.UTC()
	return &utc, nil
}
