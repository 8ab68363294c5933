package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/psucalc/internal/domain"
)

type ConfigUC struct {
	Configs domain.ConfigRepo
}

// List returns saved configurations newest first. query is split on
// whitespace and every token has to match.
func (uc *ConfigUC) List(ctx context.Context, query string) ([]domain.SavedConfig, error) {
	return uc.Configs.List(ctx, strings.Fields(query))
}

func (uc *ConfigUC) Save(ctx context.Context, c *domain.SavedConfig) error {
	if c == nil {
		return fmt.Errorf("config nil: %w", domain.ErrInvalid)
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = domain.DefaultConfigName
	}
	return uc.Configs.Save(ctx, c)
}

func (uc *ConfigUC) Get(ctx context.Context, id uuid.UUID) (*domain.SavedConfig, error) {
	return uc.Configs.Find(ctx, id)
}

func (uc *ConfigUC) Rename(ctx context.Context, id uuid.UUID, name string) (*domain.SavedConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name required: %w", domain.ErrInvalid)
	}
	if len(name) > 140 {
		return nil, fmt.Errorf("name too long: %w", domain.ErrInvalid)
	}
	if err := uc.Configs.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return uc.Configs.Find(ctx, id)
}

func (uc *ConfigUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Configs.Delete(ctx, id)
}
