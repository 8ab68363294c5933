package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/psucalc/internal/adapters/repo/gormrepo"
	"github.com/phenrril/psucalc/internal/app"
	"github.com/phenrril/psucalc/internal/config"
)

func main() {
	cfg := config.LoadServer()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := gormrepo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zlog.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}

	application := app.NewApp(db, cfg)
	if err := application.MigrateAndSeed(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate and seed database")
	}

	port := cfg.Port
	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, port))
	if err != nil {
		zlog.Warn().Err(err).Str("port", port).Msg("port busy, trying fallbacks")
		for p := 8081; p <= 8090; p++ {
			l2, err2 := net.Listen("tcp", net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", p)))
			if err2 == nil {
				ln = l2
				port = fmt.Sprint(p)
				break
			}
		}
		if ln == nil {
			zlog.Fatal().Err(err).Msg("no port available")
		}
	}

	server := &http.Server{
		Handler:           application.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("host", cfg.Host).Str("port", port).Str("driver", cfg.DBDriver).Msg("catalog api listening")
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("shutdown")
	}
}
