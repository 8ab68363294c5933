package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/psucalc/internal/domain"
)

type ComponentRepo struct{ db *gorm.DB }

func NewComponentRepo(db *gorm.DB) *ComponentRepo { return &ComponentRepo{db: db} }

func (r *ComponentRepo) List(ctx context.Context, f domain.ComponentFilter) ([]domain.Component, error) {
	var list []domain.Component
	q := r.db.WithContext(ctx).Model(&domain.Component{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(query))
	}
	if err := q.Order("created_at asc, name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return list, nil
}

func (r *ComponentRepo) All(ctx context.Context) ([]domain.Component, error) {
	return r.List(ctx, domain.ComponentFilter{})
}

func (r *ComponentRepo) FindByName(ctx context.Context, cat domain.Category, name string) (*domain.Component, error) {
	var c domain.Component
	if err := r.db.WithContext(ctx).First(&c, "category = ? AND name = ?", cat, name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ComponentRepo) Save(ctx context.Context, c *domain.Component) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s %q: %w", c.Category, c.Name, domain.ErrConflict)
		}
		return fmt.Errorf("save component: %w", err)
	}
	return nil
}

func (r *ComponentRepo) Delete(ctx context.Context, cat domain.Category, name string) error {
	res := r.db.WithContext(ctx).Where("category = ? AND name = ?", cat, name).Delete(&domain.Component{})
	if res.Error != nil {
		return fmt.Errorf("delete component: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
