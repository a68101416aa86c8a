package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	authdomain "github.com/sortelabs/promo/internal/auth/domain"
	"github.com/sortelabs/promo/internal/auth/tokens"
	clientdomain "github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/internal/clock"
	"github.com/sortelabs/promo/internal/config"
	"github.com/sortelabs/promo/internal/providers/email"
	"github.com/sortelabs/promo/internal/ratelimit"
	userdomain "github.com/sortelabs/promo/internal/user/domain"
	"github.com/sortelabs/promo/pkg/cpf"
	"github.com/sortelabs/promo/pkg/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// securityEmailResendWindow throttles how often the device
// authorization email may be re-sent for the same client.
const securityEmailResendWindow = 15 * time.Minute

const securityBundleTTL = 15 * time.Minute

type Params struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Tokens     *tokens.TokenService
	UserRepo   userdomain.Repository
	ClientRepo clientdomain.Repository
	Email      email.Provider
	Limiter    *ratelimit.LoginLimiter `optional:"true"`
	AuditSvc   auditdomain.Service     `optional:"true"`
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	tokens     *tokens.TokenService
	userRepo   userdomain.Repository
	clientRepo clientdomain.Repository
	email      email.Provider
	limiter    *ratelimit.LoginLimiter
	auditSvc   auditdomain.Service
}

func New(p Params) authdomain.Service {
	return &Service{
		cfg:        p.Config,
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		tokens:     p.Tokens,
		userRepo:   p.UserRepo,
		clientRepo: p.ClientRepo,
		email:      p.Email,
		limiter:    p.Limiter,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Register(ctx context.Context, req authdomain.RegisterRequest) (authdomain.RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	var created userdomain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, tx, emailAddr, username)
		if err != nil {
			return err
		}
		if exists {
			return authdomain.ErrDuplicateUser
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
		if err != nil {
			return err
		}

		role, err := s.userRepo.FindRoleByName(ctx, tx, userdomain.RoleUser)
		if err != nil {
			return err
		}
		if role == nil {
			return authdomain.ErrRoleNotFound
		}

		now := s.clock.Now()
		created = userdomain.User{
			ID:        s.genID.Generate(),
			Username:  username,
			Email:     emailAddr,
			Password:  string(hashed),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Insert(ctx, tx, &created); err != nil {
			return err
		}
		return s.userRepo.LinkRole(ctx, tx, created.ID, role.ID)
	})
	if err != nil {
		return authdomain.RegisterResponse{}, err
	}

	s.audit(ctx, "auth.register", "users", created.ID.String(), nil)
	return authdomain.RegisterResponse{
		ID:       created.ID.String(),
		Username: created.Username,
	}, nil
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.TokenResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, s.db, emailAddr)
	if err != nil {
		return authdomain.TokenResponse{}, err
	}
	if user == nil {
		return authdomain.TokenResponse{}, authdomain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return authdomain.TokenResponse{}, authdomain.ErrInvalidCredentials
	}

	roles, err := s.userRepo.RolesForUser(ctx, s.db, user.ID)
	if err != nil {
		return authdomain.TokenResponse{}, err
	}

	signed, err := s.tokens.Generate(tokens.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Roles:    roles,
	})
	if err != nil {
		return authdomain.TokenResponse{}, err
	}
	return authdomain.TokenResponse{Token: signed}, nil
}

// WebLogin authenticates a campaign participant by CPF and a
// per-device security token. An unknown CPF creates a pre-register
// client bound to the device. A known CPF with a different device
// token triggers the authorization email flow instead of a session.
func (s *Service) WebLogin(ctx context.Context, req authdomain.WebLoginRequest) (authdomain.TokenResponse, error) {
	rawCPF := strings.TrimSpace(req.CPF)
	securityToken := strings.TrimSpace(req.SecurityToken)
	if rawCPF == "" || securityToken == "" {
		return authdomain.TokenResponse{}, authdomain.ErrIncompleteData
	}
	if !cpf.IsValid(rawCPF) {
		return authdomain.TokenResponse{}, authdomain.ErrInvalidCPF
	}

	if allowed, err := s.allowLogin(ctx, rawCPF, req.IP); err != nil {
		s.log.Warn("login rate limit check failed", zap.Error(err))
	} else if !allowed {
		return authdomain.TokenResponse{}, authdomain.ErrRateLimited
	}

	formatted := cpf.Format(rawCPF)
	client, err := s.clientRepo.FindByCPF(ctx, s.db, formatted)
	if err != nil {
		return authdomain.TokenResponse{}, err
	}

	if client == nil {
		client, err = s.createPreRegister(ctx, formatted, securityToken)
		if err != nil {
			return authdomain.TokenResponse{}, err
		}
	} else if client.SecurityToken == "" {
		// First login from a registered device, adopt it.
		if err := s.clientRepo.UpdateSecurityToken(ctx, s.db, client.ID, securityToken); err != nil {
			return authdomain.TokenResponse{}, err
		}
	} else if client.SecurityToken != securityToken {
		return authdomain.TokenResponse{}, s.handleDifferentDevice(ctx, client, securityToken)
	}

	signed, err := s.tokens.Generate(tokens.Claims{
		ClientToken: client.Token,
		Roles:       []string{userdomain.RoleWeb},
	})
	if err != nil {
		return authdomain.TokenResponse{}, err
	}
	return authdomain.TokenResponse{Token: signed}, nil
}

func (s *Service) createPreRegister(ctx context.Context, formattedCPF, securityToken string) (*clientdomain.Client, error) {
	clientToken, err := token.NewHex(32)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	client := clientdomain.Client{
		ID:            s.genID.Generate(),
		CPF:           formattedCPF,
		Token:         clientToken,
		SecurityToken: securityToken,
		IsPreRegister: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.clientRepo.Insert(ctx, s.db, &client); err != nil {
		return nil, err
	}

	s.audit(ctx, "auth.web_pre_register", "clients", client.ID.String(), nil)
	return &client, nil
}

func (s *Service) handleDifferentDevice(ctx context.Context, client *clientdomain.Client, newSecurityToken string) error {
	now := s.clock.Now()
	if client.SecurityTokenEmailSentAt != nil &&
		now.Before(client.SecurityTokenEmailSentAt.Add(securityEmailResendWindow)) {
		return authdomain.ErrSecurityEmailSent
	}

	if err := s.clientRepo.StampSecurityEmailSent(ctx, s.db, client.ID, now); err != nil {
		return err
	}

	bundle, err := tokens.EncodeSecurityBundle(tokens.SecurityBundle{
		ClientToken:      client.Token,
		OldSecurityToken: client.SecurityToken,
		NewSecurityToken: newSecurityToken,
		ExpiresAt:        now.Add(securityBundleTTL).Unix(),
	})
	if err != nil {
		return err
	}

	if client.Email != "" {
		if err := s.email.SendSecurityAuthorization(ctx, client.Email, client.Name, bundle); err != nil {
			s.log.Warn("failed to send security authorization email",
				zap.String("client_id", client.ID.String()),
				zap.Error(err),
			)
		}
	}
	return authdomain.ErrDifferentDevice
}

func (s *Service) UpdateSecurityToken(ctx context.Context, req authdomain.UpdateSecurityTokenRequest) error {
	bundle, ok := tokens.DecodeSecurityBundle(strings.TrimSpace(req.Token))
	if !ok {
		return authdomain.ErrInvalidBundle
	}
	if bundle.ExpiresAt < s.clock.Now().Unix() {
		return authdomain.ErrExpiredBundle
	}

	client, err := s.clientRepo.FindByTokenAndSecurityToken(ctx, s.db, bundle.ClientToken, bundle.OldSecurityToken)
	if err != nil {
		return err
	}
	if client == nil {
		return authdomain.ErrClientNotFound
	}

	if err := s.clientRepo.UpdateSecurityToken(ctx, s.db, client.ID, bundle.NewSecurityToken); err != nil {
		return err
	}

	s.audit(ctx, "auth.update_security_token", "clients", client.ID.String(), nil)
	return nil
}

func (s *Service) allowLogin(ctx context.Context, rawCPF, ip string) (bool, error) {
	if !s.limiter.Enabled() {
		return true, nil
	}
	allowed, err := s.limiter.AllowCPF(ctx, cpf.Normalize(rawCPF))
	if err != nil || !allowed {
		return allowed, err
	}
	if strings.TrimSpace(ip) == "" {
		return true, nil
	}
	return s.limiter.AllowIP(ctx, ip)
}

func (s *Service) audit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, targetType, &targetID, metadata)
}
