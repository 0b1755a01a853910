// Package server exposes the entitlement engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/paperflow/internal/config"
	"github.com/smallbiznis/paperflow/internal/featuregate"
	featuregatedomain "github.com/smallbiznis/paperflow/internal/featuregate/domain"
	obsmetrics "github.com/smallbiznis/paperflow/internal/observability/metrics"
	obstracing "github.com/smallbiznis/paperflow/internal/observability/tracing"
	"github.com/smallbiznis/paperflow/internal/plancatalog"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"github.com/smallbiznis/paperflow/internal/plantransition"
	plantransitiondomain "github.com/smallbiznis/paperflow/internal/plantransition/domain"
	"github.com/smallbiznis/paperflow/internal/quota"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"github.com/smallbiznis/paperflow/internal/ratelimit"
	"github.com/smallbiznis/paperflow/internal/tenant"
	tenantdomain "github.com/smallbiznis/paperflow/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	plancatalog.Module,
	quota.Module,
	plantransition.Module,
	featuregate.Module,
	tenant.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CorrelationMiddleware())
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
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
	log    *zap.Logger
	db     *gorm.DB
	genID  *snowflake.Node

	catalogSvc    plancatalogdomain.Service
	quotaSvc      quotadomain.Service
	transitionSvc plantransitiondomain.Service
	gateSvc       featuregatedomain.Service
	tenantSvc     tenantdomain.Service

	limiter *ratelimit.QuotaAPILimiter
	metrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	GenID *snowflake.Node

	CatalogSvc    plancatalogdomain.Service
	QuotaSvc      quotadomain.Service
	TransitionSvc plantransitiondomain.Service
	GateSvc       featuregatedomain.Service
	TenantSvc     tenantdomain.Service

	Limiter *ratelimit.QuotaAPILimiter `optional:"true"`
	Metrics *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		log:    p.Log.Named("http.server"),
		db:     p.DB,
		genID:  p.GenID,

		catalogSvc:    p.CatalogSvc,
		quotaSvc:      p.QuotaSvc,
		transitionSvc: p.TransitionSvc,
		gateSvc:       p.GateSvc,
		tenantSvc:     p.TenantSvc,

		limiter: p.Limiter,
		metrics: p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.GET("/plans/:planId", s.GetPlan)

	// -------- Tenants --------
	api.POST("/tenants", s.OnboardTenant)
	api.GET("/tenants/:tenantId", s.GetTenant)

	tenants := api.Group("/tenants/:tenantId")

	// -------- Quota --------
	tenants.GET("/quota", s.GetQuotaRecord)
	tenants.GET("/quota/check", s.CheckExceeded)
	tenants.POST("/quota/increment", s.QuotaRateLimit(), s.IncrementUsage)
	tenants.POST("/quota/decrement", s.QuotaRateLimit(), s.DecrementUsage)
	tenants.PATCH("/quota/status", s.UpdateQuotaStatus)

	// -------- Plan changes --------
	tenants.POST("/plan", s.ChangePlan)

	// -------- Feature gates --------
	tenants.GET("/features/document-access", s.CheckDocumentAccess)
	tenants.GET("/features/pdf-export", s.CheckPDFExport)

	// -------- Payment Webhooks --------
	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.PUT("/plans/:planId", s.UpsertPlan)
}
