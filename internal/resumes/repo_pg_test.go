package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var resumeRowColumns = []string{"id", "user_id", "template_id", "title", "latex_code", "pdf_key", "page_count", "is_custom", "created_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateWithoutPDF(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	resume := Resume{ID: "r1", UserID: "u1", TemplateID: "t1", Title: "cv", LatexCode: "x", CreatedAt: now}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs("r1", "u1", "t1", "cv", "x", nil, 0, false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), resume); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDOwnership(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(resumeRowColumns).AddRow("r1", "u1", "t1", "cv", "x", "key", 2, true, now))

	if _, err := repo.GetByID(context.Background(), "u2", "r1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(resumeRowColumns))
	if _, err := repo.GetByID(context.Background(), "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListClampsPaging(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("u1", maxListLimit, 0).
		WillReturnRows(sqlmock.NewRows(resumeRowColumns).
			AddRow("r2", "u1", "t1", "b", "x", nil, 0, false, now).
			AddRow("r1", "u1", "t1", "a", "x", "key", 1, false, now.Add(-time.Hour)))

	items, err := repo.ListByUser(context.Background(), "u1", 500, -3)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 2 || items[0].PDFKey != "" || items[1].PDFKey != "key" {
		t.Fatalf("unexpected items %+v", items)
	}
}
