package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectClient          = "client"
	ObjectInvoice         = "invoice"
	ObjectGameOpportunity = "game_opportunity"
	ObjectDrawNumber      = "draw_number"
	ObjectVoucher         = "voucher"
	ObjectProduct         = "product"
	ObjectPageContent     = "page_content"
	ObjectUser            = "user"
	ObjectAuditLog        = "audit_log"
	ObjectLuck            = "luck"
	ObjectExport          = "export"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionLuckPlay       = "luck.play"
	ActionExportGenerate = "export.generate"
	ActionSelfView       = "self.view"
	ActionSelfUpdate     = "self.update"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, object, action)
		return err
	}

	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, "role:system", "system", nil, nil
	}
	if strings.HasPrefix(actor, "client:") {
		clientIDRaw := strings.TrimPrefix(actor, "client:")
		clientID, err := snowflake.ParseString(clientIDRaw)
		if err != nil || clientID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		clientIDStr := clientID.String()
		return actor, "role:web", "client", &clientIDStr, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		userIDStr := userID.String()
		role, err := s.roleForUser(ctx, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
		return actor, roleName, "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, userID snowflake.ID) (string, error) {
	var row struct {
		Name string `gorm:"column:name"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT r.name
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ?
		 LIMIT 1`,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Name)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, actorType, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"actor":  actorType,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	crudObjects := []string{
		ObjectClient,
		ObjectInvoice,
		ObjectGameOpportunity,
		ObjectDrawNumber,
		ObjectVoucher,
		ObjectProduct,
		ObjectPageContent,
		ObjectUser,
	}

	policies := [][]string{
		// Web clients operate on their own registration only.
		{"role:web", ObjectClient, ActionSelfView},
		{"role:web", ObjectClient, ActionSelfUpdate},
		{"role:web", ObjectInvoice, ActionCreate},
		{"role:web", ObjectLuck, ActionLuckPlay},
		{"role:web", ObjectVoucher, ActionView},
		{"role:web", ObjectPageContent, ActionView},

		{"role:admin", ObjectAuditLog, ActionView},
		{"role:admin", ObjectExport, ActionExportGenerate},
		{"role:admin", ObjectClient, ActionSelfView},

		{"role:system", ObjectInvoice, ActionCreate},
		{"role:system", ObjectGameOpportunity, ActionCreate},
		{"role:system", ObjectDrawNumber, ActionCreate},
	}

	for _, object := range crudObjects {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			policies = append(policies, []string{"role:admin", object, action})
		}
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
