package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/phenrril/psucalc/internal/client"
	"github.com/phenrril/psucalc/internal/config"
)

func main() {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Path != "" {
		zlog.Debug().Str("path", cfg.Path).Msg("config loaded")
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.CLI) *cobra.Command {
	var baseURL string
	root := &cobra.Command{
		Use:           "psucalc-cli",
		Short:         "Estimate the power supply a PC build needs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&baseURL, "api", cfg.API.BaseURL, "catalog API base URL")

	api := func() *client.Client { return client.New(baseURL, cfg.API.Timeout) }

	root.AddCommand(
		newEstimateCmd(cfg, api),
		newCatalogCmd(api),
		newConfigsCmd(api),
		newConsoleCmd(cfg, api),
	)
	return root
}
