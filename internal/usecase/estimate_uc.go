package usecase

import (
	"context"

	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
)

type EstimateUC struct {
	Catalog *CatalogUC
	Configs domain.ConfigRepo
}

// Estimate computes the requirement against a fresh catalog snapshot.
func (uc *EstimateUC) Estimate(ctx context.Context, sel power.Selection) (power.Result, error) {
	cat, err := uc.Catalog.Snapshot(ctx)
	if err != nil {
		return power.Result{}, err
	}
	return power.Estimate(cat, sel), nil
}

// EstimateAndSave estimates and stores the outcome in the history. The stored
// entry is returned alongside the result.
func (uc *EstimateUC) EstimateAndSave(ctx context.Context, sel power.Selection, name string) (power.Result, *domain.SavedConfig, error) {
	res, err := uc.Estimate(ctx, sel)
	if err != nil {
		return power.Result{}, nil, err
	}
	cfg := domain.NewSavedConfig(name, sel, res)
	if err := uc.Configs.Save(ctx, cfg); err != nil {
		return res, nil, err
	}
	return res, cfg, nil
}
