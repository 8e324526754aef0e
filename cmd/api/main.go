package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/contentflow/config"
	"github.com/spacesedan/contentflow/internal/api"
	"github.com/spacesedan/contentflow/internal/clients"
	"github.com/spacesedan/contentflow/internal/clients/kafka_client"
	"github.com/spacesedan/contentflow/internal/db"
	"github.com/spacesedan/contentflow/internal/jobs"
	"github.com/spacesedan/contentflow/internal/logging"
	"github.com/spacesedan/contentflow/internal/monitoring"
	"github.com/spacesedan/contentflow/internal/processing"
)

const SHUTDOWN_TIMEOUT = 30 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.FromEnv()
	if err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if missing := settings.Credentials.Missing(); len(missing) > 0 {
		slog.Warn("Missing API credentials, generation requests will be rejected",
			slog.Any("missing", missing))
	}

	creds := settings.Credentials
	openaiClient := clients.NewOpenAIClient(creds.OpenAIAPIKey, settings.OpenAIModel, os.Getenv("OPENAI_BASE_URL"))
	pipeline := processing.NewPipeline(
		clients.NewRedditClient(creds.RedditClientID, creds.RedditClientSecret, creds.RedditUserAgent),
		clients.NewNewsAPIClient(creds.NewsAPIKey),
		openaiClient,
	)

	var store jobs.Store = jobs.NewMemoryStore()
	if settings.ValkeyAddress != "" {
		valkeyClient, err := clients.NewValkeyClient(settings.ValkeyAddress)
		if err != nil {
			slog.Error("Failed to connect to Valkey", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer valkeyClient.Close()
		store = jobs.NewValkeyStore(valkeyClient, settings.JobTTL)
	} else {
		slog.Warn("VALKEY_INIT_ADDRESS not set, jobs are kept in memory")
	}

	opts := []jobs.Option{jobs.WithMaxConcurrentJobs(settings.MaxConcurrentJobs)}

	if settings.ScriptsTable != "" {
		awsCfg, err := clients.LoadAWSConfig(ctx)
		if err != nil {
			slog.Error("Script archive disabled", slog.String("error", err.Error()))
		} else {
			dynamo := clients.NewDynamoDBClient(awsCfg, settings.AWSEndpoint)
			opts = append(opts, jobs.WithArchiver(db.NewScriptArchive(dynamo, settings.ScriptsTable)))
		}
	}

	if settings.KafkaBroker != "" {
		producer, err := kafka_client.NewJobEventProducer(kafka_client.GetKafkaConfig())
		if err != nil {
			slog.Error("Job events disabled", slog.String("error", err.Error()))
		} else {
			defer producer.Close()
			opts = append(opts, jobs.WithEventPublisher(producer))
		}
	}

	manager := jobs.NewManager(store, pipeline, opts...)

	var healthy atomic.Bool
	healthy.Store(true)
	go monitoring.MonitorStoreHealth(ctx, manager, &healthy, monitoring.HEALTHCHECK_INTERVAL)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(&api.APIHandler{
		Jobs:        manager,
		Credentials: settings.Credentials,
		Healthy:     &healthy,
		Promo:       &processing.PromoWriter{LLM: openaiClient},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", slog.String("addr", srv.Addr), slog.String("env", env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", slog.String("error", err.Error()))
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Running jobs were cancelled", slog.String("error", err.Error()))
	}
}
