// Package generation runs the template, model, sanitizer, compiler pipeline.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/latex"
	"resume-builder/internal/llm"
	"resume-builder/internal/prompt"
	"resume-builder/internal/results"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Compiler turns LaTeX source into PDF bytes.
type Compiler interface {
	Compile(ctx context.Context, latex string) ([]byte, error)
}

// FillRequest merges structured data into a template.
type FillRequest struct {
	Template string
	UserData json.RawMessage
}

// EditRequest applies a free-text instruction to a rendered document. When ResultID is set
// the document is loaded from the result store instead of Template.
type EditRequest struct {
	Template   string
	UserPrompt string
	ResultID   string
}

// Service runs one pipeline per call. Runs share no mutable state.
type Service struct {
	llm      llm.Client
	compiler Compiler
	results  results.Store
	cache    results.Cache
	newID    func() string
	now      func() time.Time
	observe  func(Stage)
}

// Option customizes a Service.
type Option func(*Service)

// WithStageObserver registers fn to be called on every stage transition. fn is shared by
// all runs and must be safe for concurrent use.
func WithStageObserver(fn func(Stage)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService wires the pipeline. store and cache may be nil.
func NewService(client llm.Client, compiler Compiler, store results.Store, cache results.Cache, opts ...Option) *Service {
	s := &Service{
		llm:      client,
		compiler: compiler,
		results:  store,
		cache:    cache,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fill generates a document from a template and resume data.
func (s *Service) Fill(ctx context.Context, req FillRequest) (Response, error) {
	s.enter(StageBuilding)
	p := prompt.BuildFill(req.Template, req.UserData)
	return s.run(ctx, p, results.CacheKey(string(prompt.ModeFill), req.Template, string(req.UserData)))
}

// Edit applies an instruction to an existing document.
func (s *Service) Edit(ctx context.Context, req EditRequest) (Response, error) {
	current := req.Template
	if req.ResultID != "" {
		prev, err := s.Result(ctx, req.ResultID)
		if err != nil {
			return Response{}, err
		}
		current = prev.Latex
	}
	s.enter(StageBuilding)
	p := prompt.BuildEdit(current, req.UserPrompt)
	return s.run(ctx, p, results.CacheKey(string(prompt.ModeEdit), current, req.UserPrompt))
}

// Result loads a stored result by id.
func (s *Service) Result(ctx context.Context, id string) (results.Result, error) {
	if s.results == nil {
		return results.Result{}, ErrResultNotFound
	}
	r, err := s.results.Get(ctx, id)
	if errors.Is(err, results.ErrNotFound) {
		return results.Result{}, ErrResultNotFound
	}
	return r, err
}

func (s *Service) run(ctx context.Context, p prompt.Prompt, cacheKey string) (Response, error) {
	start := s.now()
	fields := map[string]any{
		"mode":        string(p.Mode),
		"prompt_hash": p.Hash(),
	}

	if cached, ok := s.lookup(ctx, cacheKey); ok {
		metrics.IncGenerationCacheHit()
		resp := Package(cached.Latex, cached.PDF)
		resp.ResultID = s.handoff(ctx, cached, cacheKey)
		fields["result_id"] = resp.ResultID
		telemetry.Info("generation.cache_hit", fields)
		return resp, nil
	}

	metrics.IncGenerationStarted()
	doc, pdf, err := s.execute(ctx, p)
	stage := StageOf(err)

	durationMs := float64(s.now().Sub(start).Microseconds()) / 1000.0
	fields["stage"] = string(stage)
	fields["duration_ms"] = durationMs
	metrics.IncGenerationOutcome(string(stage))
	metrics.ObserveGenerationDurationMs(durationMs)
	if err != nil {
		fields["error"] = err
		telemetry.Warn("generation.failed", fields)
		return Response{}, err
	}

	resp := Package(doc, pdf)
	resp.ResultID = s.store(ctx, doc, pdf, cacheKey)
	s.enter(StageDone)
	fields["result_id"] = resp.ResultID
	telemetry.Info("generation.complete", fields)
	return resp, nil
}

// execute walks the stages in order and stops at the first failure.
func (s *Service) execute(ctx context.Context, p prompt.Prompt) (string, []byte, error) {
	s.enter(StageGenerating)
	modelStart := s.now()
	raw, err := s.llm.Generate(ctx, p)
	metrics.ObserveModelDurationMs(float64(s.now().Sub(modelStart).Milliseconds()))
	if err != nil {
		telemetry.Warn("generation.model_error", map[string]any{
			"mode":  string(p.Mode),
			"error": err,
		})
		raw = ""
	}

	s.enter(StageSanitizing)
	doc, err := latex.Sanitize(raw)
	if err != nil {
		s.enter(StageRejected)
		return "", nil, &Error{Stage: StageRejected, Err: err}
	}

	s.enter(StageCompiling)
	compileStart := s.now()
	pdf, err := s.compiler.Compile(ctx, doc)
	metrics.ObserveCompileDurationMs(float64(s.now().Sub(compileStart).Milliseconds()))
	if err != nil {
		s.enter(StageCompileFailed)
		return "", nil, &Error{Stage: StageCompileFailed, Latex: doc, Err: err}
	}
	s.enter(StagePackaging)
	return doc, pdf, nil
}

func (s *Service) lookup(ctx context.Context, key string) (results.Result, bool) {
	if s.cache == nil {
		return results.Result{}, false
	}
	r, ok, err := s.cache.Lookup(ctx, key)
	if err != nil {
		telemetry.Warn("generation.cache_error", map[string]any{"error": err})
		return results.Result{}, false
	}
	return r, ok
}

// store keeps the result for later handoff. Failures are logged and the caller still gets
// the packaged output.
func (s *Service) store(ctx context.Context, doc string, pdf []byte, cacheKey string) string {
	if s.results == nil && s.cache == nil {
		return ""
	}
	r := results.Result{
		Latex:     doc,
		PDF:       pdf,
		CreatedAt: s.now().UTC(),
	}
	if s.results != nil {
		r.ID = s.newID()
		if err := s.results.Save(ctx, r); err != nil {
			telemetry.Warn("generation.result_store_error", map[string]any{"error": err})
			r.ID = ""
		}
	}
	if s.cache != nil {
		if err := s.cache.Remember(ctx, cacheKey, r); err != nil {
			telemetry.Warn("generation.cache_error", map[string]any{"error": err})
		}
	}
	return r.ID
}

// handoff returns an id that resolves in the result store for a cached result. The cache
// may outlive the store, so an expired id is replaced by a fresh one.
func (s *Service) handoff(ctx context.Context, cached results.Result, cacheKey string) string {
	if s.results == nil {
		return ""
	}
	if cached.ID != "" {
		_, err := s.results.Get(ctx, cached.ID)
		if err == nil {
			return cached.ID
		}
		if !errors.Is(err, results.ErrNotFound) {
			telemetry.Warn("generation.result_store_error", map[string]any{"error": err})
		}
	}
	return s.store(ctx, cached.Latex, cached.PDF, cacheKey)
}

func (s *Service) enter(stage Stage) {
	if s.observe != nil {
		s.observe(stage)
	}
}
