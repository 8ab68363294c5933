package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
	ErrConflict = errors.New("already exists")
)

type ComponentRepo interface {
	List(ctx context.Context, f ComponentFilter) ([]Component, error)
	FindByName(ctx context.Context, cat Category, name string) (*Component, error)
	Save(ctx context.Context, c *Component) error
	Delete(ctx context.Context, cat Category, name string) error
	All(ctx context.Context) ([]Component, error)
}

type ConfigRepo interface {
	List(ctx context.Context, tokens []string) ([]SavedConfig, error)
	Find(ctx context.Context, id uuid.UUID) (*SavedConfig, error)
	Save(ctx context.Context, c *SavedConfig) error
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// WattageSource looks up the raw power value published on a product page.
type WattageSource interface {
	FetchWattage(ctx context.Context, url string) (string, error)
}
