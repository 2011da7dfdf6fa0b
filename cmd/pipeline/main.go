package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"shelfwatch/configs"
	"shelfwatch/internal/contract"
	"shelfwatch/internal/monitor"
	"shelfwatch/internal/pipeline"
	"shelfwatch/internal/scraper"
	"shelfwatch/internal/storage"
)

// Runs one or all pipeline stages in-process. The scheduled path runs the
// stages as separate binaries; this entrypoint exists for local runs and
// backfills.
func main() {
	stage := flag.String("stage", pipeline.StageAll, "pipeline stage to run: scrape, validate, transform, aggregate or all")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	appConfig := configs.AppLoad()

	store, err := storage.NewClickHouseStorage(appConfig.DBDSN)
	if err != nil {
		logger.Error("Failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	validator, err := contract.NewProductValidator()
	if err != nil {
		logger.Error("Failed to load product schema contract", "error", err)
		os.Exit(1)
	}

	scrapeLogger := logrus.New()
	scrapeLogger.SetFormatter(&logrus.JSONFormatter{})

	rawWriter := &kafka.Writer{
		Addr:         kafka.TCP(appConfig.KafkaRaw.Broker),
		Topic:        appConfig.KafkaRaw.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Compression:  kafka.Zstd,
	}
	defer rawWriter.Close()

	productScraper := scraper.New(scraper.Config{
		BaseURL:           appConfig.Scraper.BaseURL,
		RequestsPerSecond: appConfig.Scraper.RequestsPerSecond,
		RequestTimeout:    time.Duration(appConfig.Scraper.RequestTimeoutSeconds) * time.Second,
	}, scrapeLogger)
	publisher := scraper.NewPublisher(rawWriter, scrapeLogger)

	alerter := monitor.NewAlerter(monitor.AlertConfig{
		SlackEnabled:    appConfig.Alert.SlackWebhookURL != "",
		SlackWebhookURL: appConfig.Alert.SlackWebhookURL,
		EmailEnabled:    appConfig.Alert.SMTPHost != "" && appConfig.Alert.Recipient != "",
		SMTPHost:        appConfig.Alert.SMTPHost,
		SMTPPort:        appConfig.Alert.SMTPPort,
		SMTPUser:        appConfig.Alert.SMTPUser,
		SMTPPassword:    appConfig.Alert.SMTPPassword,
		Recipient:       appConfig.Alert.Recipient,
	}, logger)

	p := pipeline.New(
		store,
		productScraper,
		publisher,
		validator,
		monitor.NewWriter(appConfig.Monitor.MetricsDir),
		alerter,
		logger,
		pipeline.Config{
			AnomalyThreshold: appConfig.Monitor.AnomalyThreshold,
			MaxArrivalDelay:  time.Duration(appConfig.Monitor.MaxArrivalDelayHours) * time.Hour,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx, *stage); err != nil {
		logger.Error("Pipeline run failed", "stage", *stage, "error", err)
		os.Exit(1)
	}

	logger.Info("Pipeline run complete", "stage", *stage)
}
