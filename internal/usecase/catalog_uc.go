package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
)

type CatalogUC struct {
	Components domain.ComponentRepo
	Specs      domain.WattageSource
}

func (uc *CatalogUC) List(ctx context.Context, cat domain.Category) ([]domain.Component, error) {
	return uc.Components.List(ctx, domain.ComponentFilter{Category: cat})
}

// Search returns every record of cat whose name contains q, ignoring case.
// No hit is ErrNotFound.
func (uc *CatalogUC) Search(ctx context.Context, cat domain.Category, q string) ([]domain.Component, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalid)
	}
	list, err := uc.Components.List(ctx, domain.ComponentFilter{Category: cat, Query: q})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	return list, nil
}

func (uc *CatalogUC) Get(ctx context.Context, cat domain.Category, name string) (*domain.Component, error) {
	return uc.Components.FindByName(ctx, cat, name)
}

func (uc *CatalogUC) Create(ctx context.Context, c *domain.Component) error {
	if c == nil {
		return fmt.Errorf("component nil: %w", domain.ErrInvalid)
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Power = strings.TrimSpace(c.Power)
	if c.Name == "" {
		return fmt.Errorf("name required: %w", domain.ErrInvalid)
	}
	cat, ok := domain.ParseCategory(string(c.Category))
	if !ok {
		return fmt.Errorf("category %q: %w", c.Category, domain.ErrInvalid)
	}
	c.Category = cat
	if _, err := uc.Components.FindByName(ctx, c.Category, c.Name); err == nil {
		return fmt.Errorf("%s %q: %w", c.Category, c.Name, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return uc.Components.Save(ctx, c)
}

// Update replaces power and type of the exact record; nil leaves a field
// untouched.
func (uc *CatalogUC) Update(ctx context.Context, cat domain.Category, name string, pow, typ *string) (*domain.Component, error) {
	c, err := uc.Components.FindByName(ctx, cat, name)
	if err != nil {
		return nil, err
	}
	if pow != nil {
		c.Power = strings.TrimSpace(*pow)
	}
	if typ != nil {
		c.Type = strings.TrimSpace(*typ)
	}
	if err := uc.Components.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CatalogUC) Delete(ctx context.Context, cat domain.Category, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name required: %w", domain.ErrInvalid)
	}
	return uc.Components.Delete(ctx, cat, name)
}

// Snapshot reads every category and parses power fields once, giving the
// read-only catalog consumed by power.Estimate.
func (uc *CatalogUC) Snapshot(ctx context.Context) (power.Catalog, error) {
	all, err := uc.Components.All(ctx)
	if err != nil {
		return power.Catalog{}, err
	}
	return SnapshotOf(all), nil
}

// SnapshotOf groups components by category, keeping their order.
func SnapshotOf(components []domain.Component) power.Catalog {
	var c power.Catalog
	for _, comp := range components {
		rec := power.Record{Name: comp.Name, Watts: ParsePower(comp.Category, comp.Power)}
		switch comp.Category {
		case domain.CategoryCPU:
			c.CPUs = append(c.CPUs, rec)
		case domain.CategoryGPU:
			c.GPUs = append(c.GPUs, rec)
		case domain.CategoryRAM:
			c.RAM = append(c.RAM, rec)
		case domain.CategoryStorage:
			c.Storage = append(c.Storage, rec)
		case domain.CategoryCooling:
			c.Cooling = append(c.Cooling, rec)
		case domain.CategoryDrive:
			c.Drives = append(c.Drives, rec)
		case domain.CategoryMotherboard:
			c.Motherboards = append(c.Motherboards, rec)
		case domain.CategoryPSU:
			c.PSUs = append(c.PSUs, rec)
		}
	}
	return c
}

// ParsePower applies the category's parsing rule: cooling, drives,
// motherboards and PSUs carry integer values, the rest may be decorated.
func ParsePower(cat domain.Category, raw string) int {
	switch cat {
	case domain.CategoryCooling, domain.CategoryDrive, domain.CategoryMotherboard, domain.CategoryPSU:
		return power.ParseCapacity(raw)
	default:
		return power.ParseWatt(raw)
	}
}

type ImportReport struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Import upserts records by (category, name). Rows that fail are reported and
// do not abort the import.
func (uc *CatalogUC) Import(ctx context.Context, rows []domain.Component) (ImportReport, error) {
	var rep ImportReport
	for i := range rows {
		row := rows[i]
		row.Name = strings.TrimSpace(row.Name)
		if row.Name == "" {
			rep.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		existing, err := uc.Components.FindByName(ctx, row.Category, row.Name)
		switch {
		case err == nil:
			existing.Power = strings.TrimSpace(row.Power)
			existing.Type = strings.TrimSpace(row.Type)
			if err := uc.Components.Save(ctx, existing); err != nil {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s/%s: %v", row.Category, row.Name, err))
				continue
			}
			rep.Updated++
		case errors.Is(err, domain.ErrNotFound):
			row.Power = strings.TrimSpace(row.Power)
			row.Type = strings.TrimSpace(row.Type)
			if err := uc.Components.Save(ctx, &row); err != nil {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s/%s: %v", row.Category, row.Name, err))
				continue
			}
			rep.Created++
		default:
			return rep, err
		}
	}
	return rep, nil
}

func (uc *CatalogUC) Export(ctx context.Context) ([]domain.Component, error) {
	return uc.Components.All(ctx)
}

// Enrich reads the power figure published at url and stores it on the record.
func (uc *CatalogUC) Enrich(ctx context.Context, cat domain.Category, name, url string) (*domain.Component, error) {
	if uc.Specs == nil {
		return nil, errors.New("spec sheet lookup not configured")
	}
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("url required: %w", domain.ErrInvalid)
	}
	c, err := uc.Components.FindByName(ctx, cat, name)
	if err != nil {
		return nil, err
	}
	raw, err := uc.Specs.FetchWattage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch spec sheet: %w", err)
	}
	if power.ParseWatt(raw) == 0 {
		return nil, fmt.Errorf("no wattage on %s: %w", url, domain.ErrNotFound)
	}
	c.Power = raw
	if err := uc.Components.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
