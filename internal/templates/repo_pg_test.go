package templates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateEncodesSections(t *testing.T) {
	repo, mock := newMockRepo(t)
	tpl := Template{
		ID:           "tpl-1",
		Name:         "modern",
		DefaultLatex: doc,
		IsPublic:     true,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO templates").
		WithArgs(tpl.ID, tpl.Name, tpl.DefaultLatex, "", true, []byte("[]"), tpl.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), tpl); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO templates").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), Template{Name: "modern"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPGRepoGetByName(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "default_latex", "thumbnail_url", "is_public", "sections", "created_at"}).
		AddRow("tpl-1", "modern", doc, "/temimg/modern.png", true, []byte(`["experience","skills"]`), created)
	mock.ExpectQuery("SELECT (.+) FROM templates").WithArgs("modern").WillReturnRows(rows)

	got, err := repo.GetByName(context.Background(), "modern")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.Name != "modern" || len(got.Sections) != 2 || got.Sections[1] != "skills" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected template %+v", got)
	}

	mock.ExpectQuery("SELECT (.+) FROM templates").WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := repo.GetByName(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListPublic(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := sqlmock.NewRows([]string{"id", "name", "default_latex", "thumbnail_url", "is_public", "sections", "created_at"}).
		AddRow("a", "alpha", doc, "", true, nil, time.Now()).
		AddRow("b", "beta", doc, "", true, []byte(`[]`), time.Now())
	mock.ExpectQuery("WHERE is_public = TRUE\\s+ORDER BY name ASC").WillReturnRows(rows)

	items, err := repo.ListPublic(context.Background())
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(items) != 2 || items[0].Name != "alpha" || items[0].Sections == nil {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestPGRepoExists(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("modern").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "modern")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
}
