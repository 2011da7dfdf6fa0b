package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shelfwatch/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends raw product documents to the raw products Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

func NewPublisher(writer *kafka.Writer, log *logrus.Logger) *Publisher {
	return &Publisher{writer: writer, log: log}
}

// Publish serializes each product as JSON and writes it to Kafka, keyed by
// product id so all observations of a product land on the same partition.
func (p *Publisher) Publish(ctx context.Context, products []models.RawProduct) error {
	if len(products) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(products))
	for _, product := range products {
		data, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("serialize product %s: %w", product.ProductID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(product.ProductID),
			Value: data,
		})
	}

	writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msgs...); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("kafka write failed: %w", err)
	}

	p.log.WithField("count", len(msgs)).Info("published products to kafka")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
