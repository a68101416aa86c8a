package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sortelabs/promo/internal/audit"
	auditdomain "github.com/sortelabs/promo/internal/audit/domain"
	"github.com/sortelabs/promo/internal/auth"
	authdomain "github.com/sortelabs/promo/internal/auth/domain"
	"github.com/sortelabs/promo/internal/auth/tokens"
	"github.com/sortelabs/promo/internal/authorization"
	"github.com/sortelabs/promo/internal/client"
	clientdomain "github.com/sortelabs/promo/internal/client/domain"
	"github.com/sortelabs/promo/internal/clock"
	"github.com/sortelabs/promo/internal/config"
	"github.com/sortelabs/promo/internal/drawnumber"
	drawnumberdomain "github.com/sortelabs/promo/internal/drawnumber/domain"
	"github.com/sortelabs/promo/internal/gameopportunity"
	gameopportunitydomain "github.com/sortelabs/promo/internal/gameopportunity/domain"
	"github.com/sortelabs/promo/internal/invoice"
	invoicedomain "github.com/sortelabs/promo/internal/invoice/domain"
	"github.com/sortelabs/promo/internal/luck"
	luckdomain "github.com/sortelabs/promo/internal/luck/domain"
	obsmetrics "github.com/sortelabs/promo/internal/observability/metrics"
	obstracing "github.com/sortelabs/promo/internal/observability/tracing"
	"github.com/sortelabs/promo/internal/pagecontent"
	pagecontentdomain "github.com/sortelabs/promo/internal/pagecontent/domain"
	"github.com/sortelabs/promo/internal/product"
	productdomain "github.com/sortelabs/promo/internal/product/domain"
	"github.com/sortelabs/promo/internal/providers/email"
	"github.com/sortelabs/promo/internal/ratelimit"
	"github.com/sortelabs/promo/internal/sales"
	"github.com/sortelabs/promo/internal/user"
	userdomain "github.com/sortelabs/promo/internal/user/domain"
	"github.com/sortelabs/promo/internal/voucher"
	voucherdomain "github.com/sortelabs/promo/internal/voucher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	clock.Module,
	authorization.Module,
	audit.Module,
	ratelimit.Module,
	sales.Module,
	email.Module,
	auth.Module,
	client.Module,
	user.Module,
	product.Module,
	pagecontent.Module,
	voucher.Module,
	invoice.Module,
	gameopportunity.Module,
	drawnumber.Module,
	luck.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	tokens *tokens.TokenService

	authSvc            authdomain.Service
	authzSvc           authorization.Service
	auditSvc           auditdomain.Service
	clientSvc          clientdomain.Service
	userSvc            userdomain.Service
	productSvc         productdomain.Service
	pageContentSvc     pagecontentdomain.Service
	voucherSvc         voucherdomain.Service
	invoiceSvc         invoicedomain.Service
	gameOpportunitySvc gameopportunitydomain.Service
	drawNumberSvc      drawnumberdomain.Service
	luckSvc            luckdomain.Service
	emailProvider      email.Provider
}

type ServerParams struct {
	fx.In

	Gin    *gin.Engine
	Cfg    config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Tokens *tokens.TokenService

	AuthSvc            authdomain.Service
	AuthzSvc           authorization.Service
	AuditSvc           auditdomain.Service
	ClientSvc          clientdomain.Service
	UserSvc            userdomain.Service
	ProductSvc         productdomain.Service
	PageContentSvc     pagecontentdomain.Service
	VoucherSvc         voucherdomain.Service
	InvoiceSvc         invoicedomain.Service
	GameOpportunitySvc gameopportunitydomain.Service
	DrawNumberSvc      drawnumberdomain.Service
	LuckSvc            luckdomain.Service
	EmailProvider      email.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:             p.Gin,
		cfg:                p.Cfg,
		db:                 p.DB,
		log:                p.Log.Named("server"),
		genID:              p.GenID,
		tokens:             p.Tokens,
		authSvc:            p.AuthSvc,
		authzSvc:           p.AuthzSvc,
		auditSvc:           p.AuditSvc,
		clientSvc:          p.ClientSvc,
		userSvc:            p.UserSvc,
		productSvc:         p.ProductSvc,
		pageContentSvc:     p.PageContentSvc,
		voucherSvc:         p.VoucherSvc,
		invoiceSvc:         p.InvoiceSvc,
		gameOpportunitySvc: p.GameOpportunitySvc,
		drawNumberSvc:      p.DrawNumberSvc,
		luckSvc:            p.LuckSvc,
		emailProvider:      p.EmailProvider,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	// -------- Auth --------
	api.POST("/auth/register", s.Register)
	api.POST("/auth/login", s.Login)
	api.POST("/auth/web-login", s.WebLogin)
	api.PUT("/auth/update-security-token", s.UpdateSecurityToken)

	// -------- Public --------
	api.GET("/pages-content/slug/:slug", s.GetPageContentBySlug)
	api.GET("/vouchers/drawn", s.ListDrawnVouchers)

	// -------- Web (authenticated clients) --------
	web := api.Group("", s.AuthRequired(), s.RequireRole(userdomain.RoleWeb))
	{
		web.GET("/clients/web/profile", s.GetWebProfile)
		web.GET("/clients/web/summary", s.GetWebSummary)
		web.PUT("/clients/web", s.UpdateWebProfile)
		web.POST("/invoices/add", s.AddInvoice)
		web.GET("/invoices/try-my-luck", s.TryMyLuck)
	}

	// -------- Admin --------
	admin := api.Group("", s.AuthRequired(), s.RequireRole(userdomain.RoleAdmin))
	exportAllowed := s.RequireAction(authorization.ObjectExport, authorization.ActionExportGenerate)
	{
		clients := admin.Group("/clients", s.RequirePermission(authorization.ObjectClient))
		clients.GET("", s.ListClients)
		clients.POST("", s.CreateClient)
		clients.GET("/export", exportAllowed, s.ExportClients)
		clients.GET("/:id", s.GetClientByID)
		clients.PUT("/:id", s.UpdateClient)
		clients.DELETE("/:id", s.DeleteClient)

		users := admin.Group("/users", s.RequirePermission(authorization.ObjectUser))
		users.GET("", s.ListUsers)
		users.POST("", s.CreateUser)
		users.GET("/:id", s.GetUserByID)
		users.PUT("/:id", s.UpdateUser)
		users.DELETE("/:id", s.DeleteUser)

		invoices := admin.Group("/invoices", s.RequirePermission(authorization.ObjectInvoice))
		invoices.GET("", s.ListInvoices)
		invoices.POST("", s.CreateInvoice)
		invoices.GET("/export", exportAllowed, s.ExportInvoices)
		invoices.GET("/:id", s.GetInvoiceByID)
		invoices.PUT("/:id", s.UpdateInvoice)
		invoices.DELETE("/:id", s.DeleteInvoice)

		opportunities := admin.Group("/opportunities", s.RequirePermission(authorization.ObjectGameOpportunity))
		opportunities.GET("", s.ListGameOpportunities)
		opportunities.POST("", s.CreateGameOpportunity)
		opportunities.GET("/:id", s.GetGameOpportunityByID)
		opportunities.PUT("/:id", s.UpdateGameOpportunity)
		opportunities.DELETE("/:id", s.DeleteGameOpportunity)

		drawNumbers := admin.Group("/draw-numbers", s.RequirePermission(authorization.ObjectDrawNumber))
		drawNumbers.GET("", s.ListDrawNumbers)
		drawNumbers.POST("", s.CreateDrawNumber)
		drawNumbers.GET("/export", exportAllowed, s.ExportDrawNumbers)
		drawNumbers.GET("/:id", s.GetDrawNumberByID)
		drawNumbers.PUT("/:id", s.UpdateDrawNumber)
		drawNumbers.DELETE("/:id", s.DeleteDrawNumber)

		products := admin.Group("/products", s.RequirePermission(authorization.ObjectProduct))
		products.GET("", s.ListProducts)
		products.POST("", s.CreateProduct)
		products.GET("/export", exportAllowed, s.ExportProducts)
		products.GET("/:id", s.GetProductByID)
		products.PUT("/:id", s.UpdateProduct)
		products.DELETE("/:id", s.DeleteProduct)

		pages := admin.Group("/pages-content", s.RequirePermission(authorization.ObjectPageContent))
		pages.GET("", s.ListPageContents)
		pages.POST("", s.CreatePageContent)
		pages.GET("/:id", s.GetPageContentByID)
		pages.PUT("/:id", s.UpdatePageContent)
		pages.DELETE("/:id", s.DeletePageContent)

		vouchers := admin.Group("/vouchers", s.RequirePermission(authorization.ObjectVoucher))
		vouchers.GET("", s.ListVouchers)
		vouchers.POST("", s.CreateVoucher)
		vouchers.GET("/export", exportAllowed, s.ExportVouchers)
		vouchers.GET("/:id", s.GetVoucherByID)
		vouchers.PUT("/:id", s.UpdateVoucher)
		vouchers.DELETE("/:id", s.DeleteVoucher)

		admin.GET("/emails/welcome", s.SendWelcomeEmail)
		admin.GET("/emails/adjustment-voucher", s.SendAdjustmentVoucherEmail)
		admin.GET("/emails/voucher-winner", s.SendVoucherWinnerEmail)
		admin.GET("/emails/draw", s.SendDrawWinnerEmail)

		admin.GET("/audit-logs", s.RequireAction(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
	}
}
