// Package scraper fetches product pages from the target storefront and
// extracts raw product records. It discovers product URLs from the listing
// page, then scrapes each product page, rate limited and with retry on
// transient failures.
package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shelfwatch/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config holds scraper settings.
type Config struct {
	// BaseURL is the product listing page of the target site.
	BaseURL string

	// RequestsPerSecond caps the fetch rate against the target.
	RequestsPerSecond float64

	// RequestTimeout bounds a single page fetch.
	RequestTimeout time.Duration
}

// Scraper scrapes product data from the target e-commerce site.
type Scraper struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *logrus.Logger
	baseURL string
}

func New(cfg Config, log *logrus.Logger) *Scraper {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", "shelfwatch/1.0")

	return &Scraper{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 5),
		log:     log,
		baseURL: cfg.BaseURL,
	}
}

// ProductURLs scrapes the listing page and returns the product page URLs.
func (s *Scraper) ProductURLs(ctx context.Context) ([]string, error) {
	doc, err := s.fetch(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page: %w", err)
	}

	var urls []string
	doc.Find(".product-item a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			urls = append(urls, href)
		}
	})

	s.log.WithField("count", len(urls)).Info("discovered product URLs")
	return urls, nil
}

// ScrapeProduct fetches one product page and extracts its fields.
func (s *Scraper) ScrapeProduct(ctx context.Context, url string) (*models.RawProduct, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch product page %s: %w", url, err)
	}

	name := strings.TrimSpace(doc.Find(".product-name").First().Text())
	if name == "" {
		return nil, fmt.Errorf("product page %s: no product name", url)
	}

	price, err := parsePrice(doc.Find(".product-price").First().Text())
	if err != nil {
		return nil, fmt.Errorf("product page %s: %w", url, err)
	}

	product := &models.RawProduct{
		URL:         url,
		ScrapeDate:  time.Now().UTC().Format(time.RFC3339),
		ProductID:   productIDFromURL(url),
		Name:        name,
		Price:       price,
		Description: strings.TrimSpace(doc.Find(".product-description").First().Text()),
		InStock:     strings.Contains(doc.Find(".product-availability").First().Text(), "In Stock"),
		Brand:       strings.TrimSpace(doc.Find(".product-brand").First().Text()),
	}

	if raw, ok := doc.Find(".product-rating").First().Attr("data-rating"); ok {
		if rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			product.Rating = &rating
		}
	}

	if raw := strings.Fields(doc.Find(".product-reviews-count").First().Text()); len(raw) > 0 {
		if n, err := strconv.ParseInt(raw[0], 10, 64); err == nil {
			product.NumReviews = &n
		}
	}

	doc.Find(".product-category").Each(func(_ int, sel *goquery.Selection) {
		if c := strings.TrimSpace(sel.Text()); c != "" {
			product.Categories = append(product.Categories, c)
		}
	})

	doc.Find(".product-image img").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			product.ImageURLs = append(product.ImageURLs, src)
		}
	})

	return product, nil
}

// Run scrapes the whole catalog. Individual product failures are logged
// and skipped; one broken page must not sink the run.
func (s *Scraper) Run(ctx context.Context) ([]models.RawProduct, error) {
	urls, err := s.ProductURLs(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]models.RawProduct, 0, len(urls))
	for _, url := range urls {
		p, err := s.ScrapeProduct(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return products, ctx.Err()
			}
			s.log.WithError(err).WithField("url", url).Error("skipping product")
			continue
		}
		products = append(products, *p)
	}

	s.log.WithField("count", len(products)).Info("scrape complete")
	return products, nil
}

// fetch GETs a page respecting the rate limit, retrying transient failures
// with exponential backoff, and parses the body.
func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := s.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode() >= 500 {
			return retry.RetryableError(fmt.Errorf("server returned %s", resp.Status()))
		}
		if resp.IsError() {
			return fmt.Errorf("request failed with %s", resp.Status())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// parsePrice extracts a numeric price from display text like "$1,299.00".
func parsePrice(text string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, fmt.Errorf("no price found")
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q", text)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %v", price)
	}
	return price, nil
}

// productIDFromURL takes the last path segment as the product id, matching
// the storefront's /products/<id> URL scheme.
func productIDFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
