// cmd/intake-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"admissions-intake/internal/common/aws"
	"admissions-intake/internal/common/config"
	"admissions-intake/internal/common/database"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/observability"
	"admissions-intake/internal/lookup"
	"admissions-intake/internal/models"
	"admissions-intake/internal/notify"
	"admissions-intake/internal/search"
	"admissions-intake/internal/session"
	"admissions-intake/internal/store"
	"admissions-intake/internal/submit"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("intake-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Service Clients ---
	var cache *lookup.Cache
	if cfg.Catalog.CacheTTL > 0 {
		cache = lookup.NewCache(rdb.Client, time.Duration(cfg.Catalog.CacheTTL)*time.Second, log)
	}

	lookupClient := lookup.NewClient(lookup.ClientOptions{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: time.Duration(cfg.Catalog.Timeout) * time.Millisecond,
		Logger:  log,
		Cache:   cache,
	})

	submitClient := submit.NewClient(submit.ClientOptions{
		BaseURL: cfg.Submission.BaseURL,
		Timeout: time.Duration(cfg.Submission.Timeout) * time.Millisecond,
		Logger:  log,
	})

	auditStore := store.NewAuditStore(pg.DB, log)
	indexer := search.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)

	// Notification channels are independently optional.
	var emailSender notify.EmailSender
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = sesClient
	}
	var smsSender notify.SMSSender
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		smsSender = snsClient
	}
	notifier := notify.NewNotifier(notify.NotifierOptions{
		Email:     emailSender,
		SMS:       smsSender,
		FromEmail: cfg.Integrations.AWS.SES.FromEmail,
		Logger:    log,
	})

	zapLog.Info("All external service clients initialized")

	requiredSections := make([]models.SectionKey, 0, len(cfg.Intake.RequiredSections))
	for _, s := range cfg.Intake.RequiredSections {
		requiredSections = append(requiredSections, models.SectionKey(s))
	}

	manager := session.NewManager(session.Options{
		Lookup:           lookupClient,
		Submitter:        submitClient,
		Logger:           log,
		FormVersion:      cfg.Intake.FormVersion,
		RequiredSections: requiredSections,
		RequiredFields:   cfg.Intake.RequiredFields,
		Audit:            auditStore,
		Indexer:          indexer,
		Notifier:         notifier,
		Damaged:          submitClient,
	}, log)

	api := newAPI(manager, obs, log)

	mux := http.NewServeMux()
	api.register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:    cfg.App.ListenAddr,
		Handler: mux,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.App.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown error", zap.Error(err))
	}

	zapLog.Info("Intake manager stopped")
}
