package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const productPage = `<html><body>
<h1 class="product-name">Wireless   Headphones</h1>
<span class="product-price">$1,299.00</span>
<div class="product-description">Noise cancelling.</div>
<div class="product-rating" data-rating="4.6"></div>
<span class="product-reviews-count">128 reviews</span>
<span class="product-availability">In Stock</span>
<span class="product-brand">Acme</span>
<span class="product-category">Audio</span>
<span class="product-category">Electronics</span>
<div class="product-image"><img src="/img/p1.jpg"></div>
</body></html>`

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testScraper(baseURL string) *Scraper {
	return New(Config{
		BaseURL:           baseURL,
		RequestsPerSecond: 100,
		RequestTimeout:    5 * time.Second,
	}, testLogger())
}

func TestProductURLs(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div class="product-item"><a href="%s/products/P1">P1</a></div>
			<div class="product-item"><a href="%s/products/P2">P2</a></div>
		</body></html>`, server.URL, server.URL)
	}))
	defer server.Close()

	urls, err := testScraper(server.URL).ProductURLs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 product URLs, got %d", len(urls))
	}
}

func TestScrapeProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, productPage)
	}))
	defer server.Close()

	url := server.URL + "/products/P1"
	p, err := testScraper(server.URL).ScrapeProduct(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}

	if p.ProductID != "P1" {
		t.Errorf("expected product id P1, got %q", p.ProductID)
	}
	if p.Price != 1299.0 {
		t.Errorf("expected price 1299, got %v", p.Price)
	}
	if p.Rating == nil || *p.Rating != 4.6 {
		t.Errorf("expected rating 4.6, got %v", p.Rating)
	}
	if p.NumReviews == nil || *p.NumReviews != 128 {
		t.Errorf("expected 128 reviews, got %v", p.NumReviews)
	}
	if !p.InStock {
		t.Error("expected product in stock")
	}
	if len(p.Categories) != 2 {
		t.Errorf("expected 2 categories, got %v", p.Categories)
	}
	if len(p.ImageURLs) != 1 {
		t.Errorf("expected 1 image URL, got %v", p.ImageURLs)
	}
}

func TestScrapeProductRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, productPage)
	}))
	defer server.Close()

	_, err := testScraper(server.URL).ScrapeProduct(context.Background(), server.URL+"/products/P1")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestScrapeProductMissingName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><span class="product-price">$10</span></body></html>`)
	}))
	defer server.Close()

	if _, err := testScraper(server.URL).ScrapeProduct(context.Background(), server.URL+"/p/P1"); err == nil {
		t.Error("expected error for page without product name")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"$150.00", 150, false},
		{"$1,299.99", 1299.99, false},
		{"42", 42, false},
		{"", 0, true},
		{"free", 0, true},
	}

	for _, tc := range cases {
		got, err := parsePrice(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parsePrice(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePrice(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parsePrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestProductIDFromURL(t *testing.T) {
	if got := productIDFromURL("https://shop.example.com/products/P123"); got != "P123" {
		t.Errorf("expected P123, got %q", got)
	}
	if got := productIDFromURL("https://shop.example.com/products/P123/"); got != "P123" {
		t.Errorf("expected P123 with trailing slash, got %q", got)
	}
}
