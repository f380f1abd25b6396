package templates

import "context"

// Repo defines persistence operations for templates.
type Repo interface {
	Create(ctx context.Context, t Template) error
	GetByName(ctx context.Context, name string) (Template, error)
	ListPublic(ctx context.Context) ([]Template, error)
	ListAll(ctx context.Context) ([]Template, error)
	Exists(ctx context.Context, name string) (bool, error)
}
