package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	"github.com/smallbiznis/civitas/internal/config"
	contractdomain "github.com/smallbiznis/civitas/internal/contract/domain"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	obsmiddleware "github.com/smallbiznis/civitas/internal/observability/logger"
	obstracing "github.com/smallbiznis/civitas/internal/observability/tracing"
	"github.com/smallbiznis/civitas/internal/ratelimit"
	saledomain "github.com/smallbiznis/civitas/internal/sale/domain"
	taxdomain "github.com/smallbiznis/civitas/internal/taxes/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID", headerActorID, headerActorName, headerActorRoles, headerActorAdmin}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "Content-Disposition"}
	return cors.New(corsConfig)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine      *gin.Engine
	cfg         config.Config
	guildSvc    guilddomain.Service
	companySvc  companydomain.Service
	saleSvc     saledomain.Service
	contractSvc contractdomain.Service
	taxSvc      taxdomain.Service
	guard       *ratelimit.Guard
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	GuildSvc    guilddomain.Service
	CompanySvc  companydomain.Service
	SaleSvc     saledomain.Service
	ContractSvc contractdomain.Service
	TaxSvc      taxdomain.Service
	Guard       *ratelimit.Guard `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		guildSvc:    p.GuildSvc,
		companySvc:  p.CompanySvc,
		saleSvc:     p.SaleSvc,
		contractSvc: p.ContractSvc,
		taxSvc:      p.TaxSvc,
		guard:       p.Guard,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/crops", s.ListCrops)

	guild := v1.Group("/guilds/:guild_id", s.ActorRequired())

	// -------- Config --------
	guild.PUT("/config", s.SetupGuild)
	guild.GET("/config", s.GetGuild)
	guild.PUT("/config/country-tax-rate", s.SetCountryTaxRate)

	// -------- Companies --------
	guild.POST("/companies", s.CreateCompany)
	guild.GET("/companies", s.ListCompanies)

	// -------- Revenue --------
	guild.POST("/submissions", s.Submit)
	guild.GET("/sales", s.ListSales)
	guild.POST("/sales/:id/approve", s.ApproveSale)
	guild.POST("/sales/:id/reject", s.RejectSale)
	guild.GET("/contracts", s.ListContracts)
	guild.POST("/contracts/:id/approve", s.ApproveContract)
	guild.POST("/contracts/:id/reject", s.RejectContract)

	// -------- Taxes --------
	guild.GET("/taxes/outstanding", s.GetOutstanding)
	guild.POST("/taxes/settlements", s.Settle)
	guild.GET("/taxes/remittances", s.ListRemittances)
	guild.GET("/taxes/remittances/:id/receipt", s.DownloadReceipt)
}
