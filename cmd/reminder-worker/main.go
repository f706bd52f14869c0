package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"idmonitor/internal/document"
	"idmonitor/internal/events"
	"idmonitor/internal/notify"
	"idmonitor/internal/platform/config"
	"idmonitor/internal/platform/logger"
	"idmonitor/internal/platform/postgres"
	remindermetrics "idmonitor/internal/reminder/metrics"
	"idmonitor/internal/reminder/processor"
	"idmonitor/internal/reminder/service"
	configstore "idmonitor/internal/reminder/store/config"
	"idmonitor/internal/reminder/store/scheduled"
)

// main runs the due-reminder worker: a cron loop that drains pending
// reminders in fixed-size batches. It shares no process state with the API
// server; the conditional claim in the store keeps concurrent workers safe.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL == "" {
		log.Error("DATABASE_URL is required for the worker")
		os.Exit(1)
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
	}

	var email notify.EmailSender
	if cfg.SendGrid.APIKey != "" {
		email = notify.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		log.Warn("SENDGRID_API_KEY not set, logging emails instead of sending")
		email = notify.NewLogSender(log)
	}
	logSender := notify.NewLogSender(log)

	store := scheduled.NewPostgres(db)
	documents := document.NewPostgres(db)
	metrics := remindermetrics.New()

	svc := service.New(log, store, configstore.NewPostgres(db), service.NewPostgresTxRunner(db), metrics, publisher)
	proc := processor.New(log, store, svc, documents, email, logSender, logSender, metrics, publisher)

	c := cron.New()
	_, err = c.AddFunc(cfg.Worker.Schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		processed, err := proc.ProcessDue(runCtx, time.Now().UTC(), cfg.Worker.BatchSize)
		if err != nil {
			log.ErrorContext(runCtx, "worker run failed", "error", err)
			return
		}
		if processed > 0 {
			log.InfoContext(runCtx, "worker run complete", "processed", processed)
		}
	})
	if err != nil {
		log.Error("invalid worker schedule", "schedule", cfg.Worker.Schedule, "error", err)
		os.Exit(1)
	}

	c.Start()
	log.Info("reminder worker started", "schedule", cfg.Worker.Schedule, "batch_size", cfg.Worker.BatchSize)

	<-ctx.Done()

	// Let an in-flight run finish before exiting.
	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("reminder worker stopped")
}
