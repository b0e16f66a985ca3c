package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/mapcollab/boardd/internal/adapters/http"
	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/auth"
	"github.com/mapcollab/boardd/internal/config"
	"github.com/mapcollab/boardd/internal/core"
	"github.com/mapcollab/boardd/internal/pins"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	presence := app.NewPresence(core.NewBoardManager())

	dispatcher := app.NewDispatcher(presence, 64)
	go dispatcher.Run(ctx)

	store, err := pins.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open pin store")
	}
	defer store.Close()

	authSvc := auth.NewService(cfg.Secret, cfg.TokenTTL)
	pinHandler := pins.NewHandler(store, dispatcher)

	r := router.SetupRouter(ctx, cfg, presence, pinHandler, authSvc)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("boardd server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
