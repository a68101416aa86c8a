package service

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	clientdomain "github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/internal/config"
	drawnumberdomain "github.com/sortelabs/promo/internal/drawnumber/domain"
	gameopportunitydomain "github.com/sortelabs/promo/internal/gameopportunity/domain"
	"github.com/sortelabs/promo/internal/invoice/domain"
	productdomain "github.com/sortelabs/promo/internal/product/domain"
	"github.com/sortelabs/promo/internal/sales"
	pkgdb "github.com/sortelabs/promo/pkg/db"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config          config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Repo            domain.Repository
	ClientRepo      clientdomain.Repository
	OpportunityRepo gameopportunitydomain.Repository
	DrawNumberRepo  drawnumberdomain.Repository
	ProductSvc      productdomain.Service
	Sales           sales.Client
	AuditSvc        auditdomain.Service `optional:"true"`
}

type Service struct {
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	repo            domain.Repository
	clientRepo      clientdomain.Repository
	opportunityRepo gameopportunitydomain.Repository
	drawNumberRepo  drawnumberdomain.Repository
	productSvc      productdomain.Service
	sales           sales.Client
	auditSvc        auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		cfg:             p.Config,
		db:              p.DB,
		log:             p.Log.Named("invoice.service"),
		genID:           p.GenID,
		repo:            p.Repo,
		clientRepo:      p.ClientRepo,
		opportunityRepo: p.OpportunityRepo,
		drawNumberRepo:  p.DrawNumberRepo,
		productSvc:      p.ProductSvc,
		sales:           p.Sales,
		auditSvc:        p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	fiscalCode := strings.TrimSpace(req.FiscalCode)
	if fiscalCode == "" {
		return domain.Invoice{}, domain.ErrInvalidFiscalCode
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if client == nil {
		return domain.Invoice{}, domain.ErrClientNotFound
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:             s.genID.Generate(),
		FiscalCode:     fiscalCode,
		InvoiceValue:   req.InvoiceValue,
		HasItem:        req.HasItem,
		HasCreditcard:  req.HasCreditcard,
		HasPartnerCode: req.HasPartnerCode,
		PDV:            req.PDV,
		Store:          req.Store,
		NumCoupon:      req.NumCoupon,
		CNPJ:           req.CNPJ,
		Creditcard:     req.Creditcard,
		ClientID:       clientID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateFiscalCode
		}
		return domain.Invoice{}, err
	}

	s.audit(ctx, "invoice.create", invoice.ID)
	return invoice, nil
}

// AddFromFiscalCode fetches the sale for a fiscal code, computes how
// many game chances it earns, and atomically persists the invoice plus
// one game opportunity and one unique draw number per chance. Any
// failure rolls the whole allocation back.
func (s *Service) AddFromFiscalCode(ctx context.Context, req domain.AddInvoiceRequest) (domain.AddInvoiceResult, error) {
	fiscalCode := strings.TrimSpace(req.FiscalCode)
	if fiscalCode == "" {
		return domain.AddInvoiceResult{}, domain.ErrInvalidFiscalCode
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return domain.AddInvoiceResult{}, domain.ErrInvalidID
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return domain.AddInvoiceResult{}, err
	}
	if client == nil {
		return domain.AddInvoiceResult{}, domain.ErrClientNotFound
	}

	existing, err := s.repo.FindByFiscalCode(ctx, s.db, fiscalCode)
	if err != nil {
		return domain.AddInvoiceResult{}, err
	}
	if existing != nil {
		return domain.AddInvoiceResult{}, domain.ErrDuplicateFiscalCode
	}

	summary, err := s.sales.FiscalSummary(ctx, fiscalCode)
	if err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			return domain.AddInvoiceResult{}, domain.ErrInvalidFiscalCode
		}
		return domain.AddInvoiceResult{}, domain.ErrSalesUnavailable
	}

	threshold := s.cfg.MinInvoiceValue
	if threshold <= 0 {
		threshold = 200
	}
	if summary.TotalValue < threshold {
		return domain.AddInvoiceResult{}, domain.ErrBelowMinimumValue
	}

	hasItem := false
	if len(summary.EANs) > 0 {
		hasItem, err = s.productSvc.ExistsAnyEAN(ctx, summary.EANs)
		if err != nil {
			return domain.AddInvoiceResult{}, err
		}
	}
	hasCreditcard := summary.HasCreditcard()
	hasPartnerCode := summary.HasPartnerCode()

	chances := int(math.Floor(summary.TotalValue / threshold))
	if hasItem || hasCreditcard || hasPartnerCode {
		chances *= 2
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:             s.genID.Generate(),
		FiscalCode:     fiscalCode,
		InvoiceValue:   summary.TotalValue,
		HasItem:        hasItem,
		HasCreditcard:  hasCreditcard,
		HasPartnerCode: hasPartnerCode,
		PDV:            summary.PDV,
		Store:          summary.Store,
		NumCoupon:      summary.NumCoupon,
		CNPJ:           summary.CNPJ,
		Creditcard:     summary.Creditcard,
		ClientID:       clientID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	drawNumbers := make([]int64, 0, chances)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateFiscalCode
			}
			return err
		}

		for i := 0; i < chances; i++ {
			opportunity := gameopportunitydomain.GameOpportunity{
				ID:        s.genID.Generate(),
				InvoiceID: invoice.ID,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.opportunityRepo.Insert(ctx, tx, &opportunity); err != nil {
				return err
			}

			number, err := s.generateDrawNumber(ctx, tx)
			if err != nil {
				return err
			}
			drawNumber := drawnumberdomain.DrawNumber{
				ID:        s.genID.Generate(),
				InvoiceID: invoice.ID,
				Number:    number,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.drawNumberRepo.Insert(ctx, tx, &drawNumber); err != nil {
				return err
			}
			drawNumbers = append(drawNumbers, number)
		}
		return nil
	})
	if err != nil {
		return domain.AddInvoiceResult{}, err
	}

	s.log.Info("invoice registered",
		zap.String("fiscal_code", fiscalCode),
		zap.Int("chances", chances),
	)
	s.audit(ctx, "invoice.add", invoice.ID)

	return domain.AddInvoiceResult{
		Invoice:     invoice,
		Chances:     chances,
		DrawNumbers: drawNumbers,
	}, nil
}

// generateDrawNumber samples uniformly in [1, max] and re-samples on
// collision, up to the configured attempt cap.
func (s *Service) generateDrawNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	max := s.cfg.DrawNumberMax
	if max <= 0 {
		max = 9999999
	}
	attempts := s.cfg.DrawNumberMaxAttempts
	if attempts <= 0 {
		attempts = 100
	}

	for i := 0; i < attempts; i++ {
		candidate := rand.Int64N(max) + 1
		exists, err := s.drawNumberRepo.ExistsNumber(ctx, tx, candidate)
		if err != nil {
			return 0, err
		}
		if !exists {
			return candidate, nil
		}
	}
	return 0, domain.ErrDrawNumberExhausted
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(view *domain.InvoiceView) string {
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

	invoices := make([]domain.InvoiceView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.InvoiceView, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.InvoiceView{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	if item == nil {
		return domain.InvoiceView{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	view, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Invoice{}, err
	}
	if view == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	item := view.Invoice
	if req.FiscalCode != nil {
		fiscalCode := strings.TrimSpace(*req.FiscalCode)
		if fiscalCode == "" {
			return domain.Invoice{}, domain.ErrInvalidFiscalCode
		}
		item.FiscalCode = fiscalCode
	}
	if req.PDV != nil {
		item.PDV = strings.TrimSpace(*req.PDV)
	}
	if req.Store != nil {
		item.Store = strings.TrimSpace(*req.Store)
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateFiscalCode
		}
		return domain.Invoice{}, err
	}

	s.audit(ctx, "invoice.update", item.ID)
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

	s.audit(ctx, "invoice.delete", parsed)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "invoices", &targetID, nil)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
