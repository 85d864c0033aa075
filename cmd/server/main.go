package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nelalmis/league-match-service/internal/config"
	"github.com/nelalmis/league-match-service/internal/handler"
	"github.com/nelalmis/league-match-service/internal/logger"
	"github.com/nelalmis/league-match-service/internal/notify"
	"github.com/nelalmis/league-match-service/internal/repository"
	"github.com/nelalmis/league-match-service/internal/repository/postgres"
	"github.com/nelalmis/league-match-service/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service exited with error")
	}
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg, appLogger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		return fmt.Errorf("postgres connection: %w", err)
	}
	defer repo.Close()
	pool := repo.Pool()

	matches := postgres.NewMatchRepository(pool)
	invitations := postgres.NewInvitationRepository(pool)
	ratings := postgres.NewRatingRepository(pool)
	profiles := postgres.NewProfileRepository(pool)
	standingsRepo := postgres.NewStandingsRepository(pool)
	leagues := postgres.NewLeagueRepository(pool)
	tx := postgres.NewTxManager(pool)
	pinger := postgres.NewPinger(pool)

	notifier := notify.NewKafkaNotifier(
		strings.Join(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic, cfg.Kafka.Enabled, appLogger,
	)
	defer func() {
		if err := notifier.Close(); err != nil {
			appLogger.Error().Err(err).Msg("closing kafka writer failed")
		}
	}()

	matchSvc := service.NewMatchService(matches, invitations, notifier, appLogger)
	invitationSvc := service.NewInvitationService(
		invitations, matches, tx, notifier,
		time.Duration(cfg.Invitations.DefaultTTLHours)*time.Hour, appLogger,
	)
	standingsSvc := service.NewStandingsService(standingsRepo, leagues, appLogger)
	ratingSvc := service.NewRatingService(matches, ratings, profiles, standingsSvc, tx, notifier, appLogger)

	sweeper := startSweep(ctx, cfg.Invitations.SweepSchedule, invitationSvc, appLogger)
	if sweeper != nil {
		defer sweeper.Stop()
	}

	if cfg.Logger.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, pinger, matchSvc, invitationSvc, ratingSvc, standingsSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutdown signal received")
	timeout := time.Duration(cfg.App.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	appLogger.Info().Msg("service stopped cleanly")
	return nil
}

// runMigrations applies all pending schema migrations before the pool opens.
func runMigrations(cfg *config.Config, appLogger zerolog.Logger) error {
	u := url.URL{
		Scheme: "pgx5",
		Host:   fmt.Sprintf("%s:%d", cfg.Postgres.Host, cfg.Postgres.Port),
		Path:   cfg.Postgres.DBName,
	}
	if cfg.Postgres.User != "" || cfg.Postgres.Password != "" {
		u.User = url.UserPassword(cfg.Postgres.User, cfg.Postgres.Password)
	}
	if cfg.Postgres.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", cfg.Postgres.SSLMode)
		u.RawQuery = q.Encode()
	}

	m, err := migrate.New("file://migrations", u.String())
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	appLogger.Info().Msg("schema migrations applied")
	return nil
}

// startSweep schedules the invitation expiry sweep. An empty schedule
// disables it; a bad expression is a config error worth failing loudly on.
func startSweep(ctx context.Context, schedule string, svc service.InvitationService, appLogger zerolog.Logger) *cron.Cron {
	if schedule == "" {
		appLogger.Info().Msg("invitation expiry sweep disabled")
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := svc.ExpireSweep(sweepCtx); err != nil {
			appLogger.Error().Err(err).Msg("scheduled invitation sweep failed")
		}
	})
	if err != nil {
		appLogger.Fatal().Err(err).Str("schedule", schedule).Msg("invalid sweep schedule")
	}
	c.Start()
	appLogger.Info().Str("schedule", schedule).Msg("invitation expiry sweep scheduled")
	return c
}
