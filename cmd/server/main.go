package main

import (
	"context"
	"fmt"
	"net/http"

	"eagler-tiers/internal/config"
	"eagler-tiers/internal/constants"
	fxmodules "eagler-tiers/internal/fx"
	"eagler-tiers/internal/storage"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	handler http.Handler,
	cfg *config.Config,
	store storage.Store,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("tiers API listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			// drain in-flight mutations before the store goes away
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing snapshot store")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
