package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/psucalc/internal/domain"
)

type ConfigRepo struct{ db *gorm.DB }

func NewConfigRepo(db *gorm.DB) *ConfigRepo { return &ConfigRepo{db: db} }

const configSearchExpr = `LOWER(name || ' ' || cpu || ' ' || gpu || ' ' || ram || ' ' || storage || ' ' || CAST(watts AS TEXT)) LIKE ? ESCAPE '\'`

// List returns saved configurations newest first. Every token must occur in
// one of the display fields.
func (r *ConfigRepo) List(ctx context.Context, tokens []string) ([]domain.SavedConfig, error) {
	var list []domain.SavedConfig
	q := r.db.WithContext(ctx).Model(&domain.SavedConfig{})
	for _, tok := range tokens {
		q = q.Where(configSearchExpr, likePattern(tok))
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return list, nil
}

func (r *ConfigRepo) Find(ctx context.Context, id uuid.UUID) (*domain.SavedConfig, error) {
	var c domain.SavedConfig
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConfigRepo) Save(ctx context.Context, c *domain.SavedConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (r *ConfigRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).Model(&domain.SavedConfig{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("rename config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConfigRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.SavedConfig{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
