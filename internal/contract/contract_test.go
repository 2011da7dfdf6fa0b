package contract

import (
	"strings"
	"testing"
)

const validDoc = `{
	"url": "https://shop.example.com/products/P1",
	"scrape_date": "2025-03-01T10:00:00Z",
	"product_id": "P1",
	"name": "Wireless Headphones",
	"price": 99.9,
	"rating": 4.2,
	"num_reviews": 128,
	"in_stock": true,
	"brand": "acme",
	"categories": ["Audio"]
}`

func TestValidateAcceptsConformingDocument(t *testing.T) {
	v, err := NewProductValidator()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Validate([]byte(validDoc)); err != nil {
		t.Errorf("expected valid document, got %v", err)
	}
}

func TestValidateAcceptsNullRating(t *testing.T) {
	v, err := NewProductValidator()
	if err != nil {
		t.Fatal(err)
	}
	doc := strings.Replace(validDoc, `"rating": 4.2`, `"rating": null`, 1)
	if err := v.Validate([]byte(doc)); err != nil {
		t.Errorf("null rating must be allowed, got %v", err)
	}
}

func TestValidateRejectsViolations(t *testing.T) {
	v, err := NewProductValidator()
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		doc  string
	}{
		{"missing product_id", strings.Replace(validDoc, `"product_id": "P1",`, ``, 1)},
		{"negative price", strings.Replace(validDoc, `"price": 99.9`, `"price": -1`, 1)},
		{"rating above 5", strings.Replace(validDoc, `"rating": 4.2`, `"rating": 5.5`, 1)},
		{"empty categories", strings.Replace(validDoc, `["Audio"]`, `[]`, 1)},
		{"wrong price type", strings.Replace(validDoc, `"price": 99.9`, `"price": "99.9"`, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.Validate([]byte(tc.doc)); err == nil {
				t.Error("expected schema violation")
			}
		})
	}
}
