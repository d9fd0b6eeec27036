// Command bot plays a match over stdin/stdout. Referee input arrives on
// stdin, move commands go to stdout, logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/auth"
	"github.com/freeeve/pacgrid/internal/bot"
	"github.com/freeeve/pacgrid/internal/config"
	"github.com/freeeve/pacgrid/internal/handler"
	"github.com/freeeve/pacgrid/internal/logger"
	"github.com/freeeve/pacgrid/internal/repository"
	"github.com/freeeve/pacgrid/internal/repository/postgres"
	redisrepo "github.com/freeeve/pacgrid/internal/repository/redis"
	"github.com/freeeve/pacgrid/internal/service"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to -profile-dir")
	profileDir := flag.String("profile-dir", ".", "directory for profile output")
	flag.Parse()

	logger.Init()
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var prof interface{ Stop() }
	switch *profileMode {
	case "":
	case "cpu":
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.Quiet)
	case "mem":
		prof = profile.Start(profile.MemProfile, profile.ProfilePath(*profileDir), profile.Quiet)
	default:
		log.Fatal().Str("profile", *profileMode).Msg("Unknown profile mode (cpu, mem)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config invalid")
	}
	log.Info().Str("matchId", cfg.MatchID).Str("indexMode", cfg.IndexMode).Msg("Config loaded")

	code := 0
	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Match aborted")
		code = 1
	}
	if prof != nil {
		prof.Stop()
	}
	os.Exit(code)
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	ctrl := bot.NewController(os.Stdin, os.Stdout, bot.Options{
		MatchID:     cfg.MatchID,
		Lazy:        cfg.IndexMode == config.IndexLazy,
		RenderPaths: cfg.RenderPaths,
	})

	// Redis index cache (optional)
	if cfg.RedisURL != "" {
		rc, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, building path index locally")
		} else {
			defer rc.Close()
			ctrl.WithCache(rc)
		}
	}

	// Decision store (optional)
	var recorder repository.DecisionRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, decisions will not be stored")
		} else {
			defer db.Close()
			recorder = postgres.NewDecisionRepo(db)
		}
	}

	// Spectator server (optional)
	var broadcaster service.Broadcaster
	if cfg.SpectateAddr != "" {
		hub := handler.NewHub()
		broadcaster = hub
		srv := &http.Server{
			Addr:        cfg.SpectateAddr,
			Handler:     handler.NewRouter(hub, auth.NewTokenManager(cfg.SpectateSecret), recorder),
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.SpectateAddr).Msg("Spectator server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Spectator server error")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Spectator server shutdown error")
			}
		}()
	}

	if recorder != nil || broadcaster != nil {
		telemetry := service.NewTelemetry(cfg.TelemetryQueue, broadcaster, recorder)
		telemetry.Start(context.WithoutCancel(ctx))
		defer func() {
			telemetry.Close()
			log.Info().
				Int64("processed", telemetry.Processed()).
				Int64("dropped", telemetry.Dropped()).
				Msg("Telemetry drained")
		}()
		ctrl.WithPublisher(telemetry)
	}

	err := ctrl.Run(ctx)
	log.Info().Int("ticks", ctrl.Ticks()).Msg("Match finished")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
