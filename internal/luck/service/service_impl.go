package service

import (
	"context"
	"time"

	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	clientdomain "github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/internal/clock"
	"github.com/sortelabs/promo/internal/luck/domain"
	"github.com/sortelabs/promo/internal/providers/email"
	"github.com/sortelabs/promo/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	winMessage  = "Parabéns, você ganhou!"
	lossMessage = "Não foi dessa vez. Continue participando!"

	claimLockTTL = 15 * time.Second
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
	Email      email.Provider
	Limiter    *ratelimit.LoginLimiter `optional:"true"`
	AuditSvc   auditdomain.Service     `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	repo       domain.Repository
	clientRepo clientdomain.Repository
	email      email.Provider
	limiter    *ratelimit.LoginLimiter
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("luck.service"),
		clock:      p.Clock,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
		email:      p.Email,
		limiter:    p.Limiter,
		auditSvc:   p.AuditSvc,
	}
}

// TryMyLuck serves the client's oldest unused chance. The voucher row
// is taken under a locking read inside a single transaction, so two
// concurrent attempts against the last voucher produce exactly one
// winner. Both no-win branches answer with the same message.
func (s *Service) TryMyLuck(ctx context.Context, clientToken string) (domain.DrawResult, error) {
	client, err := s.clientRepo.FindByToken(ctx, s.db, clientToken)
	if err != nil {
		return domain.DrawResult{}, err
	}
	if client == nil {
		return domain.DrawResult{}, domain.ErrClientNotFound
	}

	if s.limiter.Enabled() {
		lockToken, acquired, err := s.limiter.TryLockClaim(ctx, client.ID.String(), claimLockTTL)
		if err != nil {
			s.log.Warn("claim lock unavailable, relying on row lock", zap.Error(err))
		} else if !acquired {
			return domain.DrawResult{}, domain.ErrClaimInFlight
		} else {
			defer func() {
				if err := s.limiter.ReleaseClaim(context.WithoutCancel(ctx), client.ID.String(), lockToken); err != nil {
					s.log.Warn("failed to release claim lock", zap.Error(err))
				}
			}()
		}
	}

	now := s.clock.Now()
	var (
		won    bool
		coupom string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opportunity, err := s.repo.FindOldestOpportunity(ctx, tx, client.ID)
		if err != nil {
			return err
		}
		if opportunity == nil {
			return domain.ErrNoOpportunity
		}

		priorWin, err := s.repo.HasPriorWin(ctx, tx, client.ID)
		if err != nil {
			return err
		}
		if priorWin {
			return s.repo.MarkOpportunityUsed(ctx, tx, opportunity.ID, lossMessage, now)
		}

		voucher, err := s.repo.LockEligibleVoucher(ctx, tx, now)
		if err != nil {
			return err
		}
		if voucher == nil {
			return s.repo.MarkOpportunityUsed(ctx, tx, opportunity.ID, lossMessage, now)
		}

		if err := s.repo.ClaimVoucher(ctx, tx, voucher.ID, opportunity.ID); err != nil {
			return err
		}
		if err := s.repo.MarkOpportunityUsed(ctx, tx, opportunity.ID, winMessage, now); err != nil {
			return err
		}
		won = true
		coupom = voucher.Coupom
		return nil
	})
	if err != nil {
		return domain.DrawResult{}, err
	}

	if !won {
		return domain.DrawResult{Win: false, Message: lossMessage}, nil
	}

	s.log.Info("voucher awarded",
		zap.String("client_id", client.ID.String()),
		zap.String("coupom", coupom),
	)
	s.audit(ctx, client.ID.String(), coupom)
	go s.sendWinnerEmail(client.Email, client.Name, coupom)

	return domain.DrawResult{
		Win:     true,
		Message: winMessage,
		Coupom:  &coupom,
	}, nil
}

func (s *Service) sendWinnerEmail(to, name, coupom string) {
	if to == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.email.SendVoucherWinner(ctx, to, name, coupom); err != nil {
		s.log.Warn("failed to send voucher winner email", zap.Error(err))
	}
}

func (s *Service) audit(ctx context.Context, clientID, coupom string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, "client", &clientID, "luck.win", "vouchers", nil, map[string]any{
		"coupom": coupom,
	})
}
