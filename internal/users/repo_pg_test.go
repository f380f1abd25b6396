package users

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

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	user := User{ID: "u1", ExternalID: "google:1", Email: "a@example.com", CreatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "google:1", "a@example.com", nil, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), User{ID: "u1", ExternalID: "google:1"})
	if !errors.Is(err, errDuplicate) {
		t.Fatalf("expected errDuplicate, got %v", err)
	}
}

func TestPGRepoGetByExternalID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "external_id", "email", "name", "created_at"}).
		AddRow("u1", "google:1", "a@example.com", nil, now)
	mock.ExpectQuery("SELECT id, external_id, email, name, created_at").
		WithArgs("google:1").
		WillReturnRows(rows)

	user, err := repo.GetByExternalID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if user.ID != "u1" || user.Name != "" || !user.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestPGRepoGetByExternalIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, external_id").
		WithArgs("google:none").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "email", "name", "created_at"}))

	if _, err := repo.GetByExternalID(context.Background(), "google:none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
