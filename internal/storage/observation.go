package storage

import (
	"context"
	"fmt"
	"time"

	"shelfwatch/internal/models"
)

// ReplaceObservations rebuilds product_observation wholesale through its
// staging table. The seq column preserves slice order as the durable
// ingestion order the aggregation tie-break relies on.
func (s *clickhouseStorage) ReplaceObservations(ctx context.Context, observations []models.Observation) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE product_observation__staging`); err != nil {
		return fmt.Errorf("truncate observation staging: %w", err)
	}

	if len(observations) > 0 {
		batch, err := s.conn.PrepareBatch(ctx, `
			INSERT INTO product_observation__staging (
				seq, product_id, name, brand, category, price,
				rating, num_reviews, in_stock, scrape_date, description,
				ingested_at
			)
		`)
		if err != nil {
			return err
		}

		now := time.Now()
		for i, o := range observations {
			err := batch.Append(
				uint64(i),
				o.ProductID,
				o.Name,
				o.Brand,
				o.Category,
				o.Price,
				o.Rating,
				o.NumReviews,
				o.InStock,
				o.ScrapeDate,
				o.Description,
				now,
			)
			if err != nil {
				return err
			}
		}
		if err := batch.Send(); err != nil {
			return err
		}
	}

	if err := s.conn.Exec(ctx, `EXCHANGE TABLES product_observation AND product_observation__staging`); err != nil {
		return fmt.Errorf("swap observation table: %w", err)
	}
	return s.conn.Exec(ctx, `TRUNCATE TABLE product_observation__staging`)
}

// FetchObservations reads the cleaned store in ingestion order.
func (s *clickhouseStorage) FetchObservations(ctx context.Context) ([]models.Observation, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT product_id, name, brand, category, price,
		       rating, num_reviews, in_stock, scrape_date, description
		FROM product_observation
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]models.Observation, 0)
	for rows.Next() {
		var o models.Observation
		err := rows.Scan(
			&o.ProductID,
			&o.Name,
			&o.Brand,
			&o.Category,
			&o.Price,
			&o.Rating,
			&o.NumReviews,
			&o.InStock,
			&o.ScrapeDate,
			&o.Description,
		)
		if err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}

	return observations, rows.Err()
}
