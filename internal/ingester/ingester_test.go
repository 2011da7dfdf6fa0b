package ingester

import (
	"io"
	"log/slog"
	"testing"

	"shelfwatch/internal/contract"

	"github.com/segmentio/kafka-go"
)

func testIngester(t *testing.T) *Ingester {
	t.Helper()
	validator, err := contract.NewProductValidator()
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIngester(nil, nil, validator, logger, Config{BatchSize: 10})
}

func TestParseMessageValidDocument(t *testing.T) {
	ig := testIngester(t)

	doc := `{
		"url": "https://shop.example.com/products/P1",
		"scrape_date": "2025-03-01T10:00:00Z",
		"product_id": "P1",
		"name": "Wireless Headphones",
		"price": 99.9,
		"in_stock": true,
		"brand": "acme",
		"categories": ["Audio"]
	}`

	product, err := ig.parseMessage(kafka.Message{Value: []byte(doc)})
	if err != nil {
		t.Fatal(err)
	}
	if product.ProductID != "P1" {
		t.Errorf("expected product id P1, got %q", product.ProductID)
	}
	if product.Price != 99.9 {
		t.Errorf("expected price 99.9, got %v", product.Price)
	}
	if product.Rating != nil {
		t.Errorf("expected nil rating, got %v", *product.Rating)
	}
}

func TestParseMessageRejectsContractViolations(t *testing.T) {
	ig := testIngester(t)

	cases := []struct {
		name string
		doc  string
	}{
		{"not json", `{{{`},
		{"missing required fields", `{"product_id": "P1"}`},
		{"negative price", `{
			"url": "u", "scrape_date": "d", "product_id": "P1", "name": "n",
			"price": -5, "in_stock": true, "brand": "b", "categories": ["c"]
		}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ig.parseMessage(kafka.Message{Value: []byte(tc.doc)}); err == nil {
				t.Error("expected message to be rejected")
			}
		})
	}
}
