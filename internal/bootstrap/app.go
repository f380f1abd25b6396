package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/compiler"
	"resume-builder/internal/generation"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/googleai"
	"resume-builder/internal/llm/vertex"
	"resume-builder/internal/results"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/internal/thumbnails"
	"resume-builder/internal/users"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.Store
	Signer *auth.Signer
	Health *health.Service

	TemplatesService  *templates.Service
	UsersService      *users.Service
	ResumesService    *resumes.Service
	GenerationService *generation.Service

	closers []func() error
}

// Build prepares dependencies and routes. A missing database or Redis falls
// back to in-memory implementations in dev-like environments.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	signer, err := auth.NewSigner(cfg.JWTSecret, !cfg.IsDevLike())
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Signer: signer,
		Health: health.NewService(),
	}

	if app.DB, err = buildDB(ctx, cfg); err != nil {
		return nil, err
	}
	if app.DB != nil {
		app.closers = append(app.closers, app.DB.Close)
		app.Health.Register("postgres", app.DB.PingContext)
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, app.closeAfter(err)
	}

	if app.Redis, err = buildRedis(ctx, cfg); err != nil {
		return nil, app.closeAfter(err)
	}
	if app.Redis != nil {
		app.closers = append(app.closers, app.Redis.Close)
		app.Health.Register("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	client, closeLLM, err := NewLLMClient(ctx, cfg)
	if err != nil {
		return nil, app.closeAfter(err)
	}
	if closeLLM != nil {
		app.closers = append(app.closers, closeLLM)
	}

	uploader, err := buildUploader(cfg)
	if err != nil {
		return nil, app.closeAfter(err)
	}

	app.TemplatesService = templates.NewService(templateRepo(app.DB), uploader)
	app.UsersService = users.NewService(userRepo(app.DB))
	app.ResumesService = resumes.NewService(resumeRepo(app.DB), app.Store)
	store, cache := app.resultStores(cfg)
	app.GenerationService = generation.NewService(client, NewCompiler(cfg), store, cache,
		generation.WithStageObserver(func(stage generation.Stage) {
			metrics.IncGenerationStage(string(stage))
		}),
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Signer:            signer,
		Health:            app.Health,
		RateLimiter:       middleware.NewRateLimiter(nil),
		GenerationHandler: generation.NewHandler(app.GenerationService),
		TemplateHandler:   templates.NewHandler(app.TemplatesService),
		UserHandler:       users.NewHandler(app.UsersService),
		ResumeHandler:     resumes.NewHandler(app.ResumesService),
		GoogleAuth: googleauth.NewGoogleService(googleauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			UIRedirect:   cfg.UIRedirectURL,
		}, signer, app.UsersService, app.oauthStates()),
	})

	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) closeAfter(err error) error {
	_ = a.Close()
	return err
}

// NewLLMClient selects the generation provider named by cfg.LLMProvider. The
// returned close func is nil for providers that hold no connection.
func NewLLMClient(ctx context.Context, cfg config.Config) (llm.Client, func() error, error) {
	switch cfg.LLMProvider {
	case "none":
		return llm.DisabledClient{}, nil, nil
	case "genai":
		c, err := googleai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("genai client: %w", err)
		}
		return c, c.Close, nil
	case "vertex":
		c, err := vertex.NewClient(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("vertex client: %w", err)
		}
		return c, c.Close, nil
	default:
		return gemini.NewClient(gemini.Options{
			Endpoint: cfg.GeminiEndpoint,
			Model:    cfg.GeminiModel,
			APIKey:   cfg.GeminiAPIKey,
			Timeout:  cfg.GeminiTimeout,
		}), nil, nil
	}
}

// NewCompiler builds the remote LaTeX compiler client. An empty URL is accepted
// and reported on the first compile.
func NewCompiler(cfg config.Config) *compiler.Client {
	return compiler.NewClient(cfg.CompilerURL, cfg.CompilerTimeout)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.InLambda() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.PoolFromEnv(db.ProfileLambda))
	} else {
		sqlDB, err = db.Open(ctx, cfg.DatabaseURL, db.PoolFromEnv(db.ProfileServer))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, nil
	}
	client, err := results.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func buildUploader(cfg config.Config) (thumbnails.Uploader, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return thumbnails.Disabled{}, nil
	}
	up, err := thumbnails.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return up, nil
}

// resultStores returns the handoff store and, when GENERATION_CACHE_TTL is set,
// the generation cache. Both use Redis when it is connected.
func (a *App) resultStores(cfg config.Config) (results.Store, results.Cache) {
	var cache results.Cache
	if a.Redis != nil {
		if cfg.GenerationCacheTTL > 0 {
			cache = results.NewRedisStore(a.Redis, cfg.GenerationCacheTTL)
		}
		return results.NewRedisStore(a.Redis, cfg.ResultTTL), cache
	}
	if cfg.GenerationCacheTTL > 0 {
		cache = results.NewMemoryStore(cfg.GenerationCacheTTL)
	}
	return results.NewMemoryStore(cfg.ResultTTL), cache
}

// oauthStates shares sign-in states through Redis so a callback may land on any instance.
func (a *App) oauthStates() googleauth.StateStore {
	if a.Redis != nil {
		return googleauth.NewRedisStates(a.Redis)
	}
	return googleauth.NewMemoryStates()
}

func templateRepo(sqlDB *sql.DB) templates.Repo {
	if sqlDB != nil {
		return &templates.PGRepo{DB: sqlDB}
	}
	return templates.NewMemoryRepo()
}

func userRepo(sqlDB *sql.DB) users.Repo {
	if sqlDB != nil {
		return &users.PGRepo{DB: sqlDB}
	}
	return users.NewMemoryRepo()
}

func resumeRepo(sqlDB *sql.DB) resumes.Repo {
	if sqlDB != nil {
		return &resumes.PGRepo{DB: sqlDB}
	}
	return resumes.NewMemoryRepo()
}

// OpenTemplates builds a template service for offline tools. The database is
// migrated first; the returned func closes it.
func OpenTemplates(ctx context.Context, cfg config.Config) (*templates.Service, func() error, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() error { return nil }
	if sqlDB != nil {
		closeDB = sqlDB.Close
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
	}
	uploader, err := buildUploader(cfg)
	if err != nil {
		_ = closeDB()
		return nil, nil, err
	}
	return templates.NewService(templateRepo(sqlDB), uploader), closeDB, nil
}
