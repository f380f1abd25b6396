package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string

	// RunMigrationsOnStart lets the Lambda handler apply migrations on cold start.
	// cmd/api always migrates.
	RunMigrationsOnStart bool

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider     string
	GeminiAPIKey    string
	GeminiEndpoint  string
	GeminiModel     string
	GeminiTimeout   time.Duration
	VertexProject   string
	VertexLocation  string
	CompilerURL     string
	CompilerTimeout time.Duration

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ResultTTL          time.Duration
	GenerationCacheTTL time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	JWTSecret          string
	AdminEmails        []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	GenerateRatePerMin float64
	GenerateBurst      int
}

// Load reads configuration from environment variables, an optional .env file and an
// optional config.yaml, with sensible defaults.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// Best-effort load of local files for dev convenience.
	for _, file := range []struct{ path, kind string }{
		{".env", "env"},
		{"cmd/.env", "env"},
		{"config.yaml", "yaml"},
	} {
		v.SetConfigFile(file.path)
		v.SetConfigType(file.kind)
		_ = v.MergeInConfig()
	}

	return FromViper(v)
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(v.GetString("ENV")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:     v.GetString("DATABASE_URL"),

		RunMigrationsOnStart: v.GetBool("RUN_MIGRATIONS_ON_START"),

		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),

		LLMProvider:     normalizeProvider(v.GetString("LLM_PROVIDER")),
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		GeminiEndpoint:  v.GetString("GEMINI_ENDPOINT"),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		GeminiTimeout:   seconds(v.GetInt("GEMINI_TIMEOUT_SECONDS")),
		VertexProject:   v.GetString("GOOGLE_CLOUD_PROJECT"),
		VertexLocation:  v.GetString("GOOGLE_CLOUD_LOCATION"),
		CompilerURL:     v.GetString("RENDER_LATEX_SERVER_URL"),
		CompilerTimeout: seconds(v.GetInt("COMPILER_TIMEOUT_SECONDS")),

		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		ResultTTL:          v.GetDuration("RESULT_TTL"),
		GenerationCacheTTL: v.GetDuration("GENERATION_CACHE_TTL"),

		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),

		JWTSecret:          v.GetString("JWT_SECRET"),
		AdminEmails:        splitAndTrim(strings.ToLower(v.GetString("ADMIN_EMAILS"))),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:      v.GetString("UI_REDIRECT_URL"),

		GenerateRatePerMin: v.GetFloat64("GENERATE_RATE_PER_MIN"),
		GenerateBurst:      v.GetInt("GENERATE_BURST"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("RUN_MIGRATIONS_ON_START", false)
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_PREFIX", "")
	v.SetDefault("SSE_KMS_KEY_ID", "")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_TIMEOUT_SECONDS", 120)
	v.SetDefault("GOOGLE_CLOUD_PROJECT", "")
	v.SetDefault("GOOGLE_CLOUD_LOCATION", "us-central1")
	v.SetDefault("RENDER_LATEX_SERVER_URL", "")
	v.SetDefault("COMPILER_TIMEOUT_SECONDS", 0)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RESULT_TTL", "1h")
	v.SetDefault("GENERATION_CACHE_TTL", "0s")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("UI_REDIRECT_URL", "")
	v.SetDefault("GENERATE_RATE_PER_MIN", 10)
	v.SetDefault("GENERATE_BURST", 3)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "genai", "gemini-sdk":
		return "genai"
	case "vertex", "vertexai":
		return "vertex"
	case "none", "disabled":
		return "none"
	default:
		return "gemini"
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
