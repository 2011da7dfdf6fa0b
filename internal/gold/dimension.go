// Package gold rebuilds the analysis-ready tables from the full cleaned
// observation history. Both builders are pure batch transforms: same input,
// same output, no side effects. Each run replaces the previous tables
// wholesale; there is no incremental state.
package gold

import (
	"math"
	"sort"

	"shelfwatch/internal/models"
)

// Thresholds for the derived dimension categories.
const (
	ratingExcellentMin = 4.5
	ratingVeryGoodMin  = 4.0
	ratingGoodMin      = 3.0
	ratingFairMin      = 2.0

	// A latest price more than 10% off the product's own historical
	// average is labeled Discount/Premium.
	priceBandPct = 0.10
)

// BuildProductDimension collapses the observation history into one
// current-state row per product_id.
//
// Per product: latest_price comes from the newest observation (ties broken
// by ingestion order, last wins), min/max/avg/stddev cover the whole
// history, rating and num_reviews take the best ever observed, and
// is_in_stock is true if the product was ever seen in stock. The price
// window always satisfies min <= avg <= max; latest_price is read
// independently of that window.
//
// An empty input yields an empty (non-nil) slice, not an error: "no data
// yet" is a valid state for a fresh pipeline.
func BuildProductDimension(observations []models.Observation) ([]models.ProductDimension, error) {
	if err := validateObservations(observations); err != nil {
		return nil, err
	}

	type group struct {
		latest     models.Observation
		prices     []float64
		rating     *float64
		numReviews int64
		inStock    bool
		categories []string
		seenCats   map[string]struct{}
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, o := range observations {
		g, ok := groups[o.ProductID]
		if !ok {
			g = &group{latest: o, seenCats: make(map[string]struct{})}
			groups[o.ProductID] = g
			order = append(order, o.ProductID)
		}

		// Newest observation wins; on equal timestamps the later
		// ingested row wins, keeping reruns deterministic.
		if !o.ScrapeDate.Before(g.latest.ScrapeDate) {
			g.latest = o
		}

		g.prices = append(g.prices, o.Price)
		if o.Rating != nil && (g.rating == nil || *o.Rating > *g.rating) {
			r := *o.Rating
			g.rating = &r
		}
		if o.NumReviews != nil && *o.NumReviews > g.numReviews {
			g.numReviews = *o.NumReviews
		}
		if o.InStock {
			g.inStock = true
		}
		if _, dup := g.seenCats[o.Category]; !dup {
			g.seenCats[o.Category] = struct{}{}
			g.categories = append(g.categories, o.Category)
		}
	}

	sort.Strings(order)

	dims := make([]models.ProductDimension, 0, len(order))
	for _, id := range order {
		g := groups[id]
		minP, maxP, avgP := priceStats(g.prices)

		dims = append(dims, models.ProductDimension{
			ProductID:      id,
			ProductName:    g.latest.Name,
			Brand:          g.latest.Brand,
			LatestPrice:    g.latest.Price,
			MinPrice:       minP,
			MaxPrice:       maxP,
			AvgPrice:       avgP,
			PriceStdDev:    sampleStdDev(g.prices, avgP),
			Rating:         g.rating,
			NumReviews:     g.numReviews,
			IsInStock:      g.inStock,
			Categories:     g.categories,
			RatingCategory: ratingCategory(g.rating),
			PriceCategory:  priceCategory(g.latest.Price, avgP),
		})
	}

	return dims, nil
}

func priceStats(prices []float64) (minP, maxP, avg float64) {
	minP, maxP = prices[0], prices[0]
	var sum float64
	for _, p := range prices {
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
		sum += p
	}
	return minP, maxP, sum / float64(len(prices))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
// A single-observation group is degenerate and resolves to 0 rather than
// propagating a division error.
func sampleStdDev(prices []float64, mean float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var ss float64
	for _, p := range prices {
		d := p - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(prices)-1))
}

// ratingCategory bands the best observed rating by descending threshold.
// Products with no rating at all map to Unrated.
func ratingCategory(rating *float64) string {
	if rating == nil {
		return models.RatingUnrated
	}
	switch r := *rating; {
	case r >= ratingExcellentMin:
		return models.RatingExcellent
	case r >= ratingVeryGoodMin:
		return models.RatingVeryGood
	case r >= ratingGoodMin:
		return models.RatingGood
	case r >= ratingFairMin:
		return models.RatingFair
	default:
		return models.RatingPoor
	}
}

// priceCategory compares the latest price to the product's own historical
// average: more than 10% below is a Discount, more than 10% above Premium.
func priceCategory(latest, avg float64) string {
	switch {
	case latest < avg*(1-priceBandPct):
		return models.PriceDiscount
	case latest > avg*(1+priceBandPct):
		return models.PricePremium
	default:
		return models.PriceRegular
	}
}
