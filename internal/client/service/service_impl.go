package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	"github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/internal/providers/email"
	pkgcpf "github.com/sortelabs/promo/pkg/cpf"
	pkgdb "github.com/sortelabs/promo/pkg/db"
	"github.com/sortelabs/promo/pkg/db/pagination"
	"github.com/sortelabs/promo/pkg/mask"
	pkgtoken "github.com/sortelabs/promo/pkg/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const birthdayLayout = "2006-01-02"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Email    email.Provider
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	email    email.Provider
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("client.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		email:    p.Email,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	cpf := strings.TrimSpace(req.CPF)
	if !pkgcpf.IsValid(cpf) {
		return domain.Client{}, domain.ErrInvalidCPF
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return domain.Client{}, err
	}

	accessToken, err := pkgtoken.NewHex(32)
	if err != nil {
		return domain.Client{}, err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:            s.genID.Generate(),
		Name:          strings.TrimSpace(req.Name),
		CPF:           pkgcpf.Format(cpf),
		Birthday:      birthday,
		Cel:           strings.TrimSpace(req.Cel),
		Email:         strings.TrimSpace(req.Email),
		Token:         accessToken,
		IsPreRegister: req.IsPreRegister,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Client{}, domain.ErrDuplicateCPF
		}
		return domain.Client{}, err
	}

	s.audit(ctx, "client.create", client.ID)
	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListClientFilter{
		Name:        strings.TrimSpace(req.Name),
		CPF:         strings.TrimSpace(req.CPF),
		Cel:         strings.TrimSpace(req.Cel),
		Email:       strings.TrimSpace(req.Email),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(client *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	resp := domain.ListClientResponse{Clients: clients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByCPF(ctx context.Context, cpf string) (domain.Client, error) {
	cleaned := strings.TrimSpace(cpf)
	if !pkgcpf.IsValid(cleaned) {
		return domain.Client{}, domain.ErrInvalidCPF
	}

	item, err := s.repo.FindByCPF(ctx, s.db, pkgcpf.Format(cleaned))
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.CPF != nil {
		cpf := strings.TrimSpace(*req.CPF)
		if !pkgcpf.IsValid(cpf) {
			return domain.Client{}, domain.ErrInvalidCPF
		}
		item.CPF = pkgcpf.Format(cpf)
	}
	if req.Birthday != nil {
		birthday, err := parseBirthday(*req.Birthday)
		if err != nil {
			return domain.Client{}, err
		}
		item.Birthday = birthday
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Cel != nil {
		item.Cel = strings.TrimSpace(*req.Cel)
	}
	if req.Email != nil {
		item.Email = strings.TrimSpace(*req.Email)
	}
	if req.IsPreRegister != nil {
		item.IsPreRegister = *req.IsPreRegister
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Client{}, domain.ErrDuplicateCPF
		}
		return domain.Client{}, err
	}

	s.audit(ctx, "client.update", item.ID)
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
	if err := s.repo.Delete(ctx, s.db, parsed); err != nil {
		return err
	}

	s.audit(ctx, "client.delete", parsed)
	return nil
}

func (s *Service) GetWebProfile(ctx context.Context, token string) (domain.WebProfile, error) {
	item, err := s.repo.FindByToken(ctx, s.db, strings.TrimSpace(token))
	if err != nil {
		return domain.WebProfile{}, err
	}
	if item == nil {
		return domain.WebProfile{}, domain.ErrNotFound
	}
	return maskProfile(item), nil
}

func (s *Service) GetWebSummary(ctx context.Context, token string) (domain.WebSummary, error) {
	cleaned := strings.TrimSpace(token)
	item, err := s.repo.FindByToken(ctx, s.db, cleaned)
	if err != nil {
		return domain.WebSummary{}, err
	}
	if item == nil {
		return domain.WebSummary{}, domain.ErrNotFound
	}

	summary, err := s.repo.Summary(ctx, s.db, cleaned)
	if err != nil {
		return domain.WebSummary{}, err
	}
	return *summary, nil
}

func (s *Service) UpdateWeb(ctx context.Context, token string, req domain.UpdateWebRequest) (domain.WebProfile, error) {
	item, err := s.repo.FindByToken(ctx, s.db, strings.TrimSpace(token))
	if err != nil {
		return domain.WebProfile{}, err
	}
	if item == nil {
		return domain.WebProfile{}, domain.ErrNotFound
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return domain.WebProfile{}, err
	}

	item.IsPreRegister = false
	item.Birthday = birthday
	item.Cel = strings.TrimSpace(req.Cel)
	item.Name = strings.TrimSpace(req.Name)
	if email := strings.TrimSpace(req.Email); email != "" {
		item.Email = email
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.WebProfile{}, err
	}

	if item.Email != "" && item.WelcomeEmailSentAt == nil {
		go s.sendWelcome(item.ID, item.Email, item.Name)
	}

	s.audit(ctx, "client.update_web", item.ID)
	return maskProfile(item), nil
}

func (s *Service) sendWelcome(id snowflake.ID, to, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.email.SendWelcome(ctx, to, name); err != nil {
		s.log.Warn("failed to send welcome email", zap.String("client_id", id.String()), zap.Error(err))
		return
	}
	if err := s.repo.StampWelcomeEmailSent(ctx, s.db, id, time.Now().UTC()); err != nil {
		s.log.Warn("failed to stamp welcome email", zap.String("client_id", id.String()), zap.Error(err))
	}
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "clients", &targetID, nil)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseBirthday(value string) (*time.Time, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil, domain.ErrInvalidBirthday
	}
	parsed, err := time.Parse(birthdayLayout, cleaned)
	if err != nil {
		return nil, domain.ErrInvalidBirthday
	}
	if parsed.After(time.Now().UTC().AddDate(-18, 0, 0)) {
		return nil, domain.ErrUnderage
	}
	return &parsed, nil
}

func maskProfile(client *domain.Client) domain.WebProfile {
	profile := domain.WebProfile{
		Name:          client.Name,
		CPF:           mask.CPF(client.CPF),
		Cel:           mask.Cel(client.Cel),
		Email:         mask.Email(client.Email),
		IsPreRegister: client.IsPreRegister,
		IsMegaWinner:  client.IsMegaWinner,
	}
	if client.Birthday != nil {
		profile.Birthday = mask.Birthday(client.Birthday.Format(birthdayLayout))
	}
	return profile
}
