package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelfwatch/configs"
	"shelfwatch/internal/scraper"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func main() {
	appConfig := configs.AppLoad()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Kafka writer for raw product records
	rawWriter := &kafka.Writer{
		Addr:         kafka.TCP(appConfig.KafkaRaw.Broker),
		Topic:        appConfig.KafkaRaw.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Compression:  kafka.Zstd,
	}
	defer rawWriter.Close()

	s := scraper.New(scraper.Config{
		BaseURL:           appConfig.Scraper.BaseURL,
		RequestsPerSecond: appConfig.Scraper.RequestsPerSecond,
		RequestTimeout:    time.Duration(appConfig.Scraper.RequestTimeoutSeconds) * time.Second,
	}, logger)
	publisher := scraper.NewPublisher(rawWriter, logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("base_url", appConfig.Scraper.BaseURL).Info("Starting catalog scrape")

	products, err := s.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Scrape failed")
		os.Exit(1)
	}

	if err := publisher.Publish(ctx, products); err != nil {
		logger.WithError(err).Error("Failed to publish scraped products")
		os.Exit(1)
	}

	logger.WithField("count", len(products)).Info("Scrape run complete")
}
