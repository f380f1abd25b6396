package server

import (
	"github.com/gin-gonic/gin"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/generation"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/templates"
	"resume-builder/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	Signer            *auth.Signer
	Health            *health.Service
	RateLimiter       *middleware.RateLimiter
	GenerationHandler *generation.Handler
	TemplateHandler   *templates.Handler
	UserHandler       *users.Handler
	ResumeHandler     *resumes.Handler
	GoogleAuth        *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	api.GET("/health", healthSvc.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	if deps.TemplateHandler != nil {
		admin := api.Group("", middleware.Auth(deps.Signer), middleware.RequireAdmin(cfg.AdminEmails))
		deps.TemplateHandler.RegisterRoutes(api, admin)
	}

	if deps.GenerationHandler != nil {
		gen := api.Group("", middleware.OptionalAuth(deps.Signer))
		if cfg.GenerateRatePerMin > 0 {
			gen.Use(middleware.RateLimit(deps.RateLimiter, "generate",
				middleware.PerMinute(cfg.GenerateRatePerMin, cfg.GenerateBurst)))
		}
		deps.GenerationHandler.RegisterRoutes(gen)
	}

	authed := api.Group("", middleware.Auth(deps.Signer))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(authed)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
