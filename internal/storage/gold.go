package storage

import (
	"context"
	"fmt"
	"time"

	"shelfwatch/internal/models"
)

// ReplaceGold rebuilds both gold tables behind staging tables and swaps
// them in back to back. The two EXCHANGE statements are not one atomic
// unit, but the stale window between them is a single statement rather
// than a whole aggregation run.
func (s *clickhouseStorage) ReplaceGold(ctx context.Context, dims []models.ProductDimension, facts []models.PriceHistoryFact) error {
	builtAt := time.Now()

	if err := s.stageDimensions(ctx, dims, builtAt); err != nil {
		return fmt.Errorf("stage dim_product: %w", err)
	}
	if err := s.stageHistory(ctx, facts, builtAt); err != nil {
		return fmt.Errorf("stage fct_price_history: %w", err)
	}

	if err := s.conn.Exec(ctx, `EXCHANGE TABLES dim_product AND dim_product__staging`); err != nil {
		return fmt.Errorf("swap dim_product: %w", err)
	}
	if err := s.conn.Exec(ctx, `EXCHANGE TABLES fct_price_history AND fct_price_history__staging`); err != nil {
		return fmt.Errorf("swap fct_price_history: %w", err)
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE dim_product__staging`); err != nil {
		return err
	}
	return s.conn.Exec(ctx, `TRUNCATE TABLE fct_price_history__staging`)
}

func (s *clickhouseStorage) stageDimensions(ctx context.Context, dims []models.ProductDimension, builtAt time.Time) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE dim_product__staging`); err != nil {
		return err
	}
	if len(dims) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO dim_product__staging (
			product_id, product_name, brand,
			latest_price, min_price, max_price, avg_price, price_stddev,
			rating, num_reviews, is_in_stock, categories,
			rating_category, price_category, built_at
		)
	`)
	if err != nil {
		return err
	}

	for _, d := range dims {
		err := batch.Append(
			d.ProductID,
			d.ProductName,
			d.Brand,
			d.LatestPrice,
			d.MinPrice,
			d.MaxPrice,
			d.AvgPrice,
			d.PriceStdDev,
			d.Rating,
			d.NumReviews,
			d.IsInStock,
			d.Categories,
			d.RatingCategory,
			d.PriceCategory,
			builtAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

func (s *clickhouseStorage) stageHistory(ctx context.Context, facts []models.PriceHistoryFact, builtAt time.Time) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE fct_price_history__staging`); err != nil {
		return err
	}
	if len(facts) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fct_price_history__staging (
			product_id, product_name, brand, category, scrape_date, price,
			previous_price, previous_date, price_change_pct,
			avg_7day, avg_30day, min_30day, max_30day,
			price_trend, price_status, is_at_30day_low, is_at_30day_high,
			built_at
		)
	`)
	if err != nil {
		return err
	}

	for _, f := range facts {
		err := batch.Append(
			f.ProductID,
			f.ProductName,
			f.Brand,
			f.Category,
			f.ScrapeDate,
			f.Price,
			f.PreviousPrice,
			f.PreviousDate,
			f.PriceChangePct,
			f.Avg7Day,
			f.Avg30Day,
			f.Min30Day,
			f.Max30Day,
			f.PriceTrend,
			f.PriceStatus,
			f.IsAt30DayLow,
			f.IsAt30DayHigh,
			builtAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}
