package storage

import (
	"context"
	"time"

	"shelfwatch/internal/models"
)

// InsertRawProducts appends raw products with a shared inserted_at
// timestamp for the batch.
func (s *clickhouseStorage) InsertRawProducts(ctx context.Context, products []*models.RawProduct) error {
	if len(products) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO raw_product (
			url, scrape_date, product_id, name, price, description,
			rating, num_reviews, in_stock, brand, categories, image_urls,
			inserted_at
		)
	`)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, p := range products {
		err := batch.Append(
			p.URL,
			p.ScrapeDate,
			p.ProductID,
			p.Name,
			p.Price,
			p.Description,
			p.Rating,
			p.NumReviews,
			p.InStock,
			p.Brand,
			p.Categories,
			p.ImageURLs,
			now,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// FetchRawProducts reads the complete raw history in insertion order.
func (s *clickhouseStorage) FetchRawProducts(ctx context.Context) ([]models.RawProduct, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT url, scrape_date, product_id, name, price, description,
		       rating, num_reviews, in_stock, brand, categories, image_urls
		FROM raw_product
		ORDER BY inserted_at, product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.RawProduct, 0)
	for rows.Next() {
		var p models.RawProduct
		err := rows.Scan(
			&p.URL,
			&p.ScrapeDate,
			&p.ProductID,
			&p.Name,
			&p.Price,
			&p.Description,
			&p.Rating,
			&p.NumReviews,
			&p.InStock,
			&p.Brand,
			&p.Categories,
			&p.ImageURLs,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
