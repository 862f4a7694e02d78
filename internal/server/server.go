package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/config"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/handlers"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/identity"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/middleware"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/stats"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/votes"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	auth    *middleware.AuthMiddleware
	handler *handlers.Handler
	logger  *slog.Logger
}

// New wires the ledger, the stats engine and the identity directory onto db
// and returns a configured server. The caller owns db.
func New(cfg *config.Config, db database.Service, logger *slog.Logger) *Server {
	gormDB := db.GetDB()
	auth := middleware.NewAuthMiddleware(cfg.JWT)
	directory := identity.NewDirectory(gormDB, logger)

	handler := handlers.NewHandler(handlers.Deps{
		Votes:     votes.NewLedger(gormDB, logger),
		Stats:     stats.NewEngine(gormDB, logger),
		Profiles:  directory,
		Accounts:  directory,
		Tokens:    auth,
		ShowStack: !cfg.IsProduction(),
	})

	return &Server{
		cfg:     cfg,
		db:      db,
		auth:    auth,
		handler: handler,
		logger:  logger,
	}
}

// HTTPServer builds the listener around the router.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Server.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] | %s | %d | %s | %s | %s | %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.ClientIP,
			param.StatusCode,
			param.Method,
			param.Path,
			param.Latency,
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.cfg.Telemetry.ServiceName))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAnyOrigin(s.cfg.Server.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := s.handler
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)

		// Vote reads (public)
		api.GET("/votes/:entityType/:entityId", h.Vote.GetCounts)
		api.GET("/votes/:entityType/:entityId/stats", h.Vote.GetStats)

		// Stats reads (public)
		api.GET("/users/:id/stats", h.Stats.GetUserStats)
		api.GET("/stats", h.Stats.ListStats)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(s.auth.RequireAuth())
		{
			protected.GET("/me", h.Auth.GetMe)

			protected.POST("/votes", h.Vote.CastVote)
			protected.DELETE("/votes/:entityType/:entityId", h.Vote.RemoveVote)
			protected.GET("/votes/:entityType/:entityId/me", h.Vote.GetMyVote)

			protected.POST("/stats/me/recalculate", h.Stats.RecalculateMine)
			protected.POST("/admin/stats/recalculate", h.Stats.RecalculateAll)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	health := s.db.Health()
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// Browsers refuse credentialed responses carrying a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
