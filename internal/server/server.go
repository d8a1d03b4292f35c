package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
	"github.com/joseikin-rescue/server/internal/config"
	"github.com/joseikin-rescue/server/internal/identity"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	userdomain "github.com/joseikin-rescue/server/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	verifier   identity.Verifier
	usersvc    userdomain.Service
	quotasvc   quotadomain.Service
	advisorsvc advisordomain.Service
	billingsvc billingdomain.Service
	sigverify  billingdomain.SignatureVerifier
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	Verifier   identity.Verifier
	Usersvc    userdomain.Service
	Quotasvc   quotadomain.Service
	Advisorsvc advisordomain.Service
	Billingsvc billingdomain.Service
	Sigverify  billingdomain.SignatureVerifier
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		verifier:   p.Verifier,
		usersvc:    p.Usersvc,
		quotasvc:   p.Quotasvc,
		advisorsvc: p.Advisorsvc,
		billingsvc: p.Billingsvc,
		sigverify:  p.Sigverify,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/signup", s.AuthRequired(), s.Signup)
	api.GET("/usage", s.AuthRequired(), s.GetUsage)
	api.POST("/chat", s.AuthRequired(), s.PostChat)
}

func (s *Server) registerWebhookRoutes() {
	// No bearer auth here; authenticity comes from the payload signature.
	s.engine.POST("/webhooks/checkout", s.HandleCheckoutWebhook)
}
