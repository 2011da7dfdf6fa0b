// Package storage provides the ClickHouse persistence layer for all
// pipeline tables: raw products, cleaned observations, and the gold tables.
package storage

import (
	"context"
	"time"

	"shelfwatch/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Storage defines persistence for every pipeline layer. Implementations
// must be safe for concurrent use.
type Storage interface {
	// InsertRawProducts appends a batch of raw scraped products.
	InsertRawProducts(ctx context.Context, products []*models.RawProduct) error

	// FetchRawProducts returns the full raw history in insertion order.
	FetchRawProducts(ctx context.Context) ([]models.RawProduct, error)

	// ReplaceObservations rebuilds the cleaned observation table
	// wholesale. Rows keep their slice order as the ingestion order.
	ReplaceObservations(ctx context.Context, observations []models.Observation) error

	// FetchObservations returns all cleaned observations in ingestion
	// order, the order the aggregation tie-break depends on.
	FetchObservations(ctx context.Context) ([]models.Observation, error)

	// ReplaceGold stages both gold tables and swaps them into place so
	// readers never see one table updated and the other stale.
	ReplaceGold(ctx context.Context, dims []models.ProductDimension, facts []models.PriceHistoryFact) error

	// Close releases database connection resources.
	Close() error
}

// clickhouseStorage implements Storage on the native ClickHouse driver,
// using batch inserts throughout.
type clickhouseStorage struct {
	conn driver.Conn
}

// NewClickHouseStorage opens a ClickHouse connection from a DSN and
// verifies connectivity with a ping.
func NewClickHouseStorage(dsn string) (Storage, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &clickhouseStorage{conn: conn}, nil
}

func (s *clickhouseStorage) Close() error {
	return s.conn.Close()
}
