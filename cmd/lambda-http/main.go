package main

// API Gateway (HTTP API, payload v2) entrypoint:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

// proxy is built on the first invocation of a container. A failed build is not kept,
// so a later invocation retries once the dependency recovers.
var proxy struct {
	mu      sync.Mutex
	adapter *ginadapter.GinLambdaV2
}

func adapter(ctx context.Context) (*ginadapter.GinLambdaV2, error) {
	proxy.mu.Lock()
	defer proxy.mu.Unlock()
	if proxy.adapter != nil {
		return proxy.adapter, nil
	}

	cfg := config.Load()
	if err := telemetry.Init(cfg.Env, cfg.LogLevel); err != nil {
		return nil, err
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrationsOnStart {
		if err := db.RunMigrations(ctx, app.DB); err != nil {
			return nil, err
		}
	}
	telemetry.Info("lambda.cold_start", map[string]any{
		"env":          cfg.Env,
		"llm_provider": cfg.LLMProvider,
		"memory_repos": app.DB == nil,
	})
	proxy.adapter = ginadapter.NewV2(app.Router)
	return proxy.adapter, nil
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	a, err := adapter(ctx)
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusServiceUnavailable,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"Service unavailable"}`,
		}, nil
	}
	return a.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
