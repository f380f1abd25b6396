package users

import (
	"context"
	"errors"
	"testing"
)

func TestSyncCreatesOnce(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	first, created, err := svc.Sync(ctx, Identity{ExternalID: "google:1", Email: "a@example.com", Name: " Ada "})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !created || first.ID == "" || first.Name != "Ada" {
		t.Fatalf("unexpected first sync: created=%v user=%+v", created, first)
	}

	second, created, err := svc.Sync(ctx, Identity{ExternalID: "google:1", Email: "changed@example.com"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if created {
		t.Fatalf("expected existing user on second sync")
	}
	if second.ID != first.ID || second.Email != "a@example.com" {
		t.Fatalf("expected unchanged user, got %+v", second)
	}
}

func TestSyncRequiresExternalID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, _, err := svc.Sync(context.Background(), Identity{ExternalID: "  "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

type racingRepo struct {
	*MemoryRepo
	winner User
	gets   int
}

func (r *racingRepo) GetByExternalID(ctx context.Context, externalID string) (User, error) {
	r.gets++
	if r.gets == 1 {
		return User{}, ErrNotFound
	}
	return r.winner, nil
}

func (r *racingRepo) Create(context.Context, User) error {
	return errDuplicate
}

func TestSyncReturnsWinnerOnDuplicate(t *testing.T) {
	repo := &racingRepo{MemoryRepo: NewMemoryRepo(), winner: User{ID: "u-winner", ExternalID: "google:2"}}
	svc := NewService(repo)

	user, created, err := svc.Sync(context.Background(), Identity{ExternalID: "google:2"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if created || user.ID != "u-winner" {
		t.Fatalf("expected concurrent winner, got created=%v user=%+v", created, user)
	}
}

func TestGetByExternalIDNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.GetByExternalID(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
