package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idmonitor/internal/document"
	"idmonitor/internal/events"
	"idmonitor/internal/jwttoken"
	"idmonitor/internal/notify"
	"idmonitor/internal/platform/config"
	"idmonitor/internal/platform/httpserver"
	"idmonitor/internal/platform/logger"
	platformmetrics "idmonitor/internal/platform/metrics"
	"idmonitor/internal/platform/postgres"
	"idmonitor/internal/platform/redis"
	"idmonitor/internal/reminder/handler"
	remindermetrics "idmonitor/internal/reminder/metrics"
	"idmonitor/internal/reminder/processor"
	"idmonitor/internal/reminder/service"
	configstore "idmonitor/internal/reminder/store/config"
	"idmonitor/internal/reminder/store/scheduled"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Storage: Postgres when configured, in-memory otherwise so the service
	// runs standalone in development.
	var (
		db            *sql.DB
		reminderStore service.ReminderStore
		dueStore      processor.ReminderStore
		configs       configstore.Store
		documents     document.Store
		users         document.UserDirectory
		txRunner      service.TxRunner
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgReminders := scheduled.NewPostgres(db)
		pgDocuments := document.NewPostgres(db)
		reminderStore = pgReminders
		dueStore = pgReminders
		configs = configstore.NewPostgres(db)
		documents = pgDocuments
		users = pgDocuments
		txRunner = service.NewPostgresTxRunner(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		memReminders := scheduled.NewInMemoryStore()
		memDocuments := document.NewInMemoryStore()
		reminderStore = memReminders
		dueStore = memReminders
		configs = configstore.NewInMemoryStore()
		documents = memDocuments
		users = memDocuments
		txRunner = service.NewShardedTxRunner()
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		configs = configstore.NewCachedStore(configs, rdb.Client, cfg.ConfigCacheTTL)
	}

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

	reminderMetrics := remindermetrics.New()
	httpMetrics := platformmetrics.New()

	svc := service.New(log, reminderStore, configs, txRunner, reminderMetrics, publisher)
	proc := processor.New(log, dueStore, svc, users, email, logSender, logSender, reminderMetrics, publisher)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())

	h := handler.New(svc, proc, documents, log, httpMetrics, jwtValidator, cfg.Worker.BatchSize)
	h.Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting idmonitor", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		if err := publisher.Flush(shutdownCtx); err != nil {
			log.Warn("failed to flush pending events", "error", err)
		}
	}
}
