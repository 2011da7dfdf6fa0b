// Package ingester consumes raw product documents from Kafka and persists
// them to ClickHouse. It handles contract validation, batching, retry on
// insert failure, and graceful shutdown.
package ingester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shelfwatch/internal/contract"
	"shelfwatch/internal/models"

	"github.com/segmentio/kafka-go"
)

// RawProductStorage is the sink for validated raw products.
type RawProductStorage interface {
	InsertRawProducts(ctx context.Context, products []*models.RawProduct) error
}

// Config holds ingester batching parameters.
type Config struct {
	// BatchSize is the maximum number of products to accumulate before
	// flushing to the database.
	BatchSize int

	// BatchTimeout is the maximum time to wait before flushing, even if
	// the batch is not full.
	BatchTimeout time.Duration
}

// Ingester consumes products from Kafka and writes them in batches.
// Delivery is at-least-once: offsets are committed only after a successful
// database insert.
type Ingester struct {
	reader    *kafka.Reader
	storage   RawProductStorage
	validator *contract.ProductValidator
	logger    *slog.Logger
	cfg       Config
}

func NewIngester(
	reader *kafka.Reader,
	storage RawProductStorage,
	validator *contract.ProductValidator,
	logger *slog.Logger,
	cfg Config,
) *Ingester {
	return &Ingester{
		reader:    reader,
		storage:   storage,
		validator: validator,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start runs the ingestion loop until the context is cancelled, flushing
// any buffered products on shutdown.
func (ig *Ingester) Start(ctx context.Context) error {
	ig.logger.Info("starting ingester", "batch_size", ig.cfg.BatchSize)

	batch := make([]*models.RawProduct, 0, ig.cfg.BatchSize)
	msgs := make([]kafka.Message, 0, ig.cfg.BatchSize)

	ticker := time.NewTicker(ig.cfg.BatchTimeout)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		// Never drop validated data: keep retrying until the database
		// accepts the batch or the run is cancelled.
		for {
			if err := ig.storage.InsertRawProducts(ctx, batch); err != nil {
				ig.logger.Error("db insert failed, retrying", "error", err, "count", len(batch))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(2 * time.Second):
					continue
				}
			}
			break
		}

		// Commit offsets only after the insert succeeded.
		if err := ig.reader.CommitMessages(ctx, msgs...); err != nil {
			ig.logger.Warn("failed to commit offsets", "error", err)
		}

		ig.logger.Debug("flushed products", "count", len(batch))
		batch = batch[:0]
		msgs = msgs[:0]
		ticker.Reset(ig.cfg.BatchTimeout)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return flush()

		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}

		default:
			fetchCtx, cancel := context.WithTimeout(ctx, ig.cfg.BatchTimeout)
			m, err := ig.reader.FetchMessage(fetchCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				if errors.Is(err, context.Canceled) {
					return flush()
				}
				ig.logger.Error("kafka fetch error", "error", err)
				select {
				case <-ctx.Done():
					return flush()
				case <-time.After(time.Second):
				}
				continue
			}

			product, err := ig.parseMessage(m)
			if err != nil {
				ig.logger.Warn("rejecting message", "error", err, "offset", m.Offset)
				continue
			}

			batch = append(batch, product)
			msgs = append(msgs, m)

			if len(batch) >= ig.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// parseMessage validates a message against the product schema contract and
// decodes it. Validation runs on the raw bytes first so the error names
// every failed expectation, not just the first decode failure.
func (ig *Ingester) parseMessage(msg kafka.Message) (*models.RawProduct, error) {
	if err := ig.validator.Validate(msg.Value); err != nil {
		return nil, err
	}

	var product models.RawProduct
	if err := json.Unmarshal(msg.Value, &product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &product, nil
}
