package silver

import (
	"io"
	"log/slog"
	"testing"

	"shelfwatch/internal/models"
)

func testTransformer() *Transformer {
	return NewTransformer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rawProduct(id string) models.RawProduct {
	return models.RawProduct{
		URL:        "https://shop.example.com/products/" + id,
		ScrapeDate: "2025-03-01T10:00:00Z",
		ProductID:  id,
		Name:       "Wireless  Headphones",
		Price:      99.90,
		InStock:    true,
		Brand:      " Acme ",
		Categories: []string{"Audio", "Electronics"},
	}
}

func TestTransformNormalizesAndExplodes(t *testing.T) {
	tr := testTransformer()

	out, err := tr.Transform([]models.RawProduct{rawProduct("P1")})
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 {
		t.Fatalf("expected one observation per category, got %d", len(out))
	}

	for _, o := range out {
		if o.Name != "Wireless Headphones" {
			t.Errorf("expected collapsed name, got %q", o.Name)
		}
		if o.Brand != "acme" {
			t.Errorf("expected normalized brand, got %q", o.Brand)
		}
		if o.Description != defaultDescription {
			t.Errorf("expected default description, got %q", o.Description)
		}
		if o.NumReviews == nil || *o.NumReviews != 0 {
			t.Errorf("expected num_reviews defaulted to 0, got %v", o.NumReviews)
		}
		if o.ScrapeDate.IsZero() {
			t.Error("expected parsed scrape date")
		}
	}

	if out[0].Category != "Audio" || out[1].Category != "Electronics" {
		t.Errorf("unexpected categories: %q, %q", out[0].Category, out[1].Category)
	}
}

func TestTransformDeduplicates(t *testing.T) {
	tr := testTransformer()

	p := rawProduct("P1")
	dup := rawProduct("P1")
	dup.Price = 50 // same key, different price: first wins

	out, err := tr.Transform([]models.RawProduct{p, dup})
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 {
		t.Fatalf("expected duplicates dropped, got %d observations", len(out))
	}
	if out[0].Price != 99.90 {
		t.Errorf("expected first row kept on duplicate key, got price %v", out[0].Price)
	}
}

func TestTransformKeepsRatingNullable(t *testing.T) {
	tr := testTransformer()

	p := rawProduct("P1")
	rating := 4.2
	p.Rating = &rating
	unrated := rawProduct("P2")

	out, err := tr.Transform([]models.RawProduct{p, unrated})
	if err != nil {
		t.Fatal(err)
	}

	if out[0].Rating == nil || *out[0].Rating != 4.2 {
		t.Errorf("expected rating preserved, got %v", out[0].Rating)
	}
	if out[2].Rating != nil {
		t.Error("expected missing rating to stay null, not default to 0")
	}
}

func TestTransformAcceptsPlainDates(t *testing.T) {
	tr := testTransformer()

	p := rawProduct("P1")
	p.ScrapeDate = "2025-03-07"

	out, err := tr.Transform([]models.RawProduct{p})
	if err != nil {
		t.Fatal(err)
	}
	if got := out[0].ScrapeDate.Format("2006-01-02"); got != "2025-03-07" {
		t.Errorf("expected parsed date 2025-03-07, got %s", got)
	}
}

func TestTransformRejectsBadRows(t *testing.T) {
	tr := testTransformer()

	cases := []struct {
		name   string
		mutate func(*models.RawProduct)
	}{
		{"missing product id", func(p *models.RawProduct) { p.ProductID = "" }},
		{"negative price", func(p *models.RawProduct) { p.Price = -1 }},
		{"bad scrape date", func(p *models.RawProduct) { p.ScrapeDate = "yesterday" }},
		{"no categories", func(p *models.RawProduct) { p.Categories = []string{" ", ""} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := rawProduct("P1")
			tc.mutate(&p)
			if _, err := tr.Transform([]models.RawProduct{p}); err == nil {
				t.Error("expected transform to reject the row")
			}
		})
	}
}
