package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/psucalc/internal/adapters/httpserver"
	"github.com/phenrril/psucalc/internal/adapters/repo/gormrepo"
	"github.com/phenrril/psucalc/internal/adapters/specsheet"
	"github.com/phenrril/psucalc/internal/config"
	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/usecase"
)

type App struct {
	DB         *gorm.DB
	Cfg        config.Server
	CatalogUC  *usecase.CatalogUC
	EstimateUC *usecase.EstimateUC
	ConfigUC   *usecase.ConfigUC
}

func NewApp(db *gorm.DB, cfg config.Server) *App {
	components := gormrepo.NewComponentRepo(db)
	configs := gormrepo.NewConfigRepo(db)

	app := &App{DB: db, Cfg: cfg}
	app.CatalogUC = &usecase.CatalogUC{Components: components, Specs: specsheet.New()}
	app.EstimateUC = &usecase.EstimateUC{Catalog: app.CatalogUC, Configs: configs}
	app.ConfigUC = &usecase.ConfigUC{Configs: configs}
	return app
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.EstimateUC, a.ConfigUC, httpserver.Options{
		RateLimitRPS: a.Cfg.RateLimitRPS,
		AdminToken:   a.Cfg.AdminToken,
		Ping:         a.Ping,
	})
}

func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// MigrateAndSeed creates the schema and, when enabled, fills an empty catalog
// with the default parts list.
func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(&domain.Component{}, &domain.SavedConfig{}); err != nil {
		return err
	}
	if !a.Cfg.SeedCatalog {
		return nil
	}
	var count int64
	if err := a.DB.Model(&domain.Component{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	rep, err := a.CatalogUC.Import(context.Background(), defaultCatalog())
	if err != nil {
		return err
	}
	log.Info().Int("components", rep.Created).Msg("catalog seeded")
	return nil
}
