package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resume-builder/internal/compiler"
	"resume-builder/internal/generation"
	"resume-builder/internal/llm"
	"resume-builder/internal/results"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/templates"
)

func testRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	signer, err := auth.NewSigner("test-secret", false)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	gen := generation.NewService(llm.DisabledClient{}, compiler.NewClient("", 0), results.NewMemoryStore(0), nil)
	return NewRouter(RouterDeps{
		Config:            cfg,
		Signer:            signer,
		GenerationHandler: generation.NewHandler(gen),
		TemplateHandler:   templates.NewHandler(templates.NewService(templates.NewMemoryRepo(), nil)),
	})
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestRouterPublicRoutes(t *testing.T) {
	r := testRouter(t, config.Config{Env: "test"})

	if resp := serve(r, http.MethodGet, "/api/v1/health", ""); resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
	resp := serve(r, http.MethodGet, "/metrics", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "generation_started_total") {
		t.Fatalf("metrics: unexpected response %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/templates", ""); resp.Code != http.StatusOK {
		t.Fatalf("templates: expected 200, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/templates/all", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("admin templates: expected 401, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/resumes", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("unmounted resumes: expected 404, got %d", resp.Code)
	}
}

func TestRouterGenerationIsAnonymousAndRateLimited(t *testing.T) {
	r := testRouter(t, config.Config{Env: "test", GenerateRatePerMin: 1, GenerateBurst: 1})
	body := `{"template":"x","userData":{}}`

	first := serve(r, http.MethodPost, "/api/v1/generate-resume", body)
	if first.Code != http.StatusInternalServerError || !strings.Contains(first.Body.String(), "Gemini returned invalid LaTeX code") {
		t.Fatalf("expected pipeline rejection, got %d %s", first.Code, first.Body.String())
	}
	second := serve(r, http.MethodPost, "/api/v1/generate-resume", body)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9090": ":9090", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
