package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid user input")

	errDuplicate = errors.New("user already exists")
)

type Repo interface {
	// Create inserts a user and returns errDuplicate when the external id is taken.
	Create(ctx context.Context, user User) error
	GetByExternalID(ctx context.Context, externalID string) (User, error)
}
