package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const templateColumns = `id, name, default_latex, thumbnail_url, is_public, sections, created_at`

// Create inserts a template. A duplicate name maps to ErrConflict.
func (r *PGRepo) Create(ctx context.Context, t Template) error {
	sections, err := json.Marshal(nonNil(t.Sections))
	if err != nil {
		return err
	}
	const query = `
INSERT INTO templates (` + templateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.DB.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.DefaultLatex,
		t.ThumbnailURL,
		t.IsPublic,
		sections,
		t.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

// GetByName returns the template with the given name.
func (r *PGRepo) GetByName(ctx context.Context, name string) (Template, error) {
	const query = `
SELECT ` + templateColumns + `
FROM templates
WHERE name = $1
LIMIT 1`
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

// ListPublic lists public templates ordered by name.
func (r *PGRepo) ListPublic(ctx context.Context) ([]Template, error) {
	const query = `
SELECT ` + templateColumns + `
FROM templates
WHERE is_public = TRUE
ORDER BY name ASC`
	return r.query(ctx, query)
}

// ListAll lists every template ordered by name.
func (r *PGRepo) ListAll(ctx context.Context) ([]Template, error) {
	const query = `
SELECT ` + templateColumns + `
FROM templates
ORDER BY name ASC`
	return r.query(ctx, query)
}

// Exists reports whether a template with the name exists.
func (r *PGRepo) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM templates WHERE name = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) query(ctx context.Context, query string) ([]Template, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(s scanner) (Template, error) {
	var t Template
	var sections []byte
	if err := s.Scan(
		&t.ID,
		&t.Name,
		&t.DefaultLatex,
		&t.ThumbnailURL,
		&t.IsPublic,
		&sections,
		&t.CreatedAt,
	); err != nil {
		return Template{}, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &t.Sections); err != nil {
			return Template{}, err
		}
	}
	t.Sections = nonNil(t.Sections)
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
