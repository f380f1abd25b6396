package templates

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores templates in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byName map[string]Template
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byName: make(map[string]Template)}
}

func (r *MemoryRepo) Create(ctx context.Context, t Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[t.Name]; ok {
		return ErrConflict
	}
	t.Sections = append([]string(nil), t.Sections...)
	r.byName[t.Name] = t
	return nil
}

func (r *MemoryRepo) GetByName(ctx context.Context, name string) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	if !ok {
		return Template{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListPublic(ctx context.Context) ([]Template, error) {
	return r.list(ctx, true)
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Template, error) {
	return r.list(ctx, false)
}

func (r *MemoryRepo) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok, nil
}

func (r *MemoryRepo) list(ctx context.Context, publicOnly bool) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Template, 0, len(r.byName))
	for _, t := range r.byName {
		if publicOnly && !t.IsPublic {
			continue
		}
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
