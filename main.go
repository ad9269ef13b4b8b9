package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/config"
	"github.com/langell/super-league-sub001/internal/database"
	server "github.com/langell/super-league-sub001/internal/http"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/metrics"
	"github.com/langell/super-league-sub001/internal/notifier"
	"github.com/langell/super-league-sub001/internal/notifier/email"
	"github.com/langell/super-league-sub001/internal/notifier/slack"
	"github.com/langell/super-league-sub001/internal/notifier/sms"
	"github.com/langell/super-league-sub001/internal/pubsub"
	"github.com/langell/super-league-sub001/internal/subrequest"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, keeping default", "level", cfg.LogLevel)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()
	log.Info("Database initialization time recorded", "duration_ms", time.Since(startTime).Milliseconds())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := metrics.NewService()
	leagueStore := league.New(db)

	events, eventsTeardown, err := pubsub.New(ctx, cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer eventsTeardown()

	dispatcher := notifier.NewDispatcher(leagueStore, metricsSvc, transports(ctx, cfg)...)
	lifecycle := subrequest.NewService(subrequest.New(db), leagueStore, dispatcher, events, metricsSvc).
		WithLocation(cfg.Location)
	s := server.NewServer(leagueStore, lifecycle, metrics.NewMetricsHandler())

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
			return err
		}
		log.Info("Server gracefully stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", "error", err)
	}
	log.Info("Server process shutting down")
}

// transports builds the dispatcher options for every configured channel.
// Channels without credentials are left out and reported as unavailable.
func transports(ctx context.Context, cfg config.Config) []notifier.Option {
	opts := []notifier.Option{notifier.WithTimeout(cfg.NotifyTimeout)}

	if cfg.SES.Enabled() {
		sender, err := email.New(ctx, cfg.SES)
		if err != nil {
			log.Error("Email disabled", "error", err)
		} else {
			opts = append(opts, notifier.WithEmail(sender))
		}
	} else {
		log.Warn("SES not configured, email notifications disabled")
	}

	if cfg.Twilio.Enabled() {
		sender, err := sms.New(cfg.Twilio, cfg.DefaultRegion, cfg.NotifyTimeout)
		if err != nil {
			log.Error("SMS disabled", "error", err)
		} else {
			opts = append(opts, notifier.WithSMS(sender))
		}
	} else {
		log.Warn("Twilio not configured, SMS notifications disabled")
	}

	if cfg.Slack.Enabled() {
		announcer := slack.NewAnnouncer(cfg.Slack.Token, cfg.Slack.ChannelID).WithLeagueChannels(cfg.Slack.Channels)
		opts = append(opts, notifier.WithAnnouncer(announcer))
	} else {
		log.Info("Slack not configured, league announcements disabled")
	}
	return opts
}
