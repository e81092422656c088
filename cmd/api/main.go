package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal/config"
	"github.com/scythe504/leaguedraw/internal/game"
	"github.com/scythe504/leaguedraw/internal/logger"
	"github.com/scythe504/leaguedraw/internal/metrics"
	"github.com/scythe504/leaguedraw/internal/server"
	"github.com/scythe504/leaguedraw/internal/words"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open word store")
	}
	defer closeStore()

	m := metrics.NewMetrics("leaguedraw")
	registry := game.NewRegistry(store, game.Options{
		LookupTimeout: cfg.WordLookupTimeout,
		Metrics:       m,
	})
	gateway := game.NewGateway(registry, m, game.GatewayOptions{
		AllowedOrigin: cfg.AllowedOrigin,
		ChatRate:      cfg.ChatRate,
		ChatBurst:     cfg.ChatBurst,
		SendBuffer:    cfg.SendBuffer,
	})

	srv := server.New(cfg, registry, gateway, store, m).HTTPServer()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	for _, name := range registry.Names() {
		registry.Delete(name)
	}
	log.Info().Msg("server exited gracefully")
}

// openStore prefers Postgres and falls back to the CSV word list.
func openStore(ctx context.Context, cfg *config.Config) (server.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		if cfg.DBMigrate {
			if err := words.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return nil, nil, err
			}
		}
		pg, err := words.NewPostgresBank(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using postgres word store")
		return pg, pg.Close, nil
	}

	mem, err := words.NewMemoryBankFromCsv(cfg.WordsCSV)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", cfg.WordsCSV).Msg("no word list found, starting with an empty store")
		mem = words.NewMemoryBank()
	case err != nil:
		return nil, nil, err
	default:
		log.Info().Str("path", cfg.WordsCSV).Msg("using csv word store")
	}
	return mem, func() {}, nil
}
