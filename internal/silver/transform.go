// Package silver cleans raw scraped products into the observation table the
// aggregation engine consumes. One raw product fans out into one observation
// per category; rows are normalized, defaulted, and deduplicated on
// (product_id, category, scrape_date).
package silver

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shelfwatch/internal/models"
)

const defaultDescription = "No description available"

// Transformer turns raw products into cleaned observations.
type Transformer struct {
	logger *slog.Logger
}

func NewTransformer(logger *slog.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform cleans and explodes raw products into observations.
//
// It fails fast on rows that violate the cleaned-store contract (missing
// product id, no categories, unparseable scrape date, negative price):
// the silver layer guarantees downstream aggregation never sees them, and
// silently dropping them would hide upstream scraper regressions.
func (t *Transformer) Transform(raw []models.RawProduct) ([]models.Observation, error) {
	type dedupeKey struct {
		productID  string
		category   string
		scrapeDate time.Time
	}

	seen := make(map[dedupeKey]struct{})
	out := make([]models.Observation, 0, len(raw))

	for i, r := range raw {
		if r.ProductID == "" {
			return nil, fmt.Errorf("raw product %d: missing product_id (url=%q)", i, r.URL)
		}
		if r.Price < 0 {
			return nil, fmt.Errorf("raw product %d (product_id=%q): negative price %v", i, r.ProductID, r.Price)
		}

		scrapedAt, err := parseScrapeDate(r.ScrapeDate)
		if err != nil {
			return nil, fmt.Errorf("raw product %d (product_id=%q): %w", i, r.ProductID, err)
		}

		name := collapseWhitespace(r.Name)
		brand := strings.ToLower(strings.TrimSpace(r.Brand))

		description := strings.TrimSpace(r.Description)
		if description == "" {
			description = defaultDescription
		}

		numReviews := r.NumReviews
		if numReviews == nil {
			zero := int64(0)
			numReviews = &zero
		}

		categories := cleanCategories(r.Categories)
		if len(categories) == 0 {
			return nil, fmt.Errorf("raw product %d (product_id=%q): no categories", i, r.ProductID)
		}

		for _, category := range categories {
			key := dedupeKey{productID: r.ProductID, category: category, scrapeDate: scrapedAt}
			if _, dup := seen[key]; dup {
				t.logger.Debug("dropping duplicate observation",
					"product_id", r.ProductID, "category", category)
				continue
			}
			seen[key] = struct{}{}

			out = append(out, models.Observation{
				ProductID:   r.ProductID,
				Name:        name,
				Brand:       brand,
				Category:    category,
				Price:       r.Price,
				Rating:      r.Rating,
				NumReviews:  numReviews,
				InStock:     r.InStock,
				ScrapeDate:  scrapedAt,
				Description: description,
			})
		}
	}

	t.logger.Info("transformed raw products",
		"raw", len(raw), "observations", len(out))
	return out, nil
}

// parseScrapeDate accepts the scraper's RFC3339 timestamps as well as plain
// dates from backfills.
func parseScrapeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unparseable scrape_date %q", s)
}

// collapseWhitespace trims and squeezes internal runs of whitespace to a
// single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
