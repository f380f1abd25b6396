package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/telemetry"
)

type Service struct {
	Repo Repo

	newID func() string
	now   func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{
		Repo:  repo,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Identity is what the authentication layer knows about the caller.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
}

// Sync returns the user for identity, creating it on first sight. Existing users
// are returned unchanged.
func (s *Service) Sync(ctx context.Context, identity Identity) (User, bool, error) {
	if s == nil || s.Repo == nil {
		return User{}, false, errors.New("users service not configured")
	}
	externalID := strings.TrimSpace(identity.ExternalID)
	if externalID == "" {
		return User{}, false, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}

	existing, err := s.Repo.GetByExternalID(ctx, externalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	user := User{
		ID:         s.newID(),
		ExternalID: externalID,
		Email:      strings.TrimSpace(identity.Email),
		Name:       strings.TrimSpace(identity.Name),
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, errDuplicate) {
			// Lost a race with a concurrent sync for the same identity.
			existing, getErr := s.Repo.GetByExternalID(ctx, externalID)
			return existing, false, getErr
		}
		return User{}, false, err
	}
	telemetry.Info("user.created", map[string]any{
		"user_id":     user.ID,
		"external_id": user.ExternalID,
	})
	return user, true, nil
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(externalID) == "" {
		return User{}, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}
	return s.Repo.GetByExternalID(ctx, externalID)
}
