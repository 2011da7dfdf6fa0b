package gold

import (
	"sort"

	"shelfwatch/internal/models"
)

const (
	// Window sizes are row counts, not calendar days. The "7-day" and
	// "30-day" names are kept from the reporting layer even though a
	// sparse partition can stretch a window over far more calendar time.
	shortWindow = 7
	longWindow  = 30

	// A change of more than 5% against the previous observation flips
	// the trend label; the same band against the trailing 30-row average
	// decides the pricing status.
	trendBandPct = 0.05

	// Within 1% of the trailing 30-row extreme counts as "at" it.
	extremeBandPct = 0.01
)

// partitionKey identifies one ordered price series. A product appearing in
// several categories gets an independent series per category.
type partitionKey struct {
	productID string
	category  string
}

// BuildPriceHistory produces one fact row per input observation, enriched
// with previous-row and trailing-window aggregates computed inside each
// (product_id, category) partition.
//
// Ordering inside a partition is a stable sort on scrape_date with the
// original ingestion order breaking ties; previous-row lookups and moving
// averages are order-sensitive, so this total order is part of the
// contract. "Previous" means the preceding row by position: a multi-day gap
// still counts.
//
// The first row of a partition has a nil previous_price and a
// price_change_pct of 0. That deliberately conflates "no prior data" with
// "no change", matching the reporting layer this table feeds.
func BuildPriceHistory(observations []models.Observation) ([]models.PriceHistoryFact, error) {
	if err := validateObservations(observations); err != nil {
		return nil, err
	}

	partitions := make(map[partitionKey][]models.Observation)
	keys := make([]partitionKey, 0)

	for _, o := range observations {
		k := partitionKey{productID: o.ProductID, category: o.Category}
		if _, ok := partitions[k]; !ok {
			keys = append(keys, k)
		}
		partitions[k] = append(partitions[k], o)
	}

	// Deterministic output order across runs regardless of map iteration.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].productID != keys[j].productID {
			return keys[i].productID < keys[j].productID
		}
		return keys[i].category < keys[j].category
	})

	facts := make([]models.PriceHistoryFact, 0, len(observations))

	for _, k := range keys {
		rows := partitions[k]
		// Stable sort keeps ingestion order for equal scrape dates;
		// rows entered the partition slice in ingestion order.
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ScrapeDate.Before(rows[j].ScrapeDate)
		})

		prices := make([]float64, len(rows))
		for i, o := range rows {
			prices[i] = o.Price
		}

		for i, o := range rows {
			f := models.PriceHistoryFact{
				ProductID:   o.ProductID,
				ProductName: o.Name,
				Brand:       o.Brand,
				Category:    o.Category,
				ScrapeDate:  o.ScrapeDate,
				Price:       o.Price,
			}

			if i > 0 {
				prev := rows[i-1]
				price := prev.Price
				date := prev.ScrapeDate
				f.PreviousPrice = &price
				f.PreviousDate = &date
				if prev.Price != 0 {
					f.PriceChangePct = (o.Price - prev.Price) / prev.Price
				}
			}

			f.Avg7Day = windowAvg(prices, i, shortWindow)
			f.Avg30Day = windowAvg(prices, i, longWindow)
			f.Min30Day, f.Max30Day = windowMinMax(prices, i, longWindow)

			f.PriceTrend = priceTrend(f.PriceChangePct)
			f.PriceStatus = priceStatus(o.Price, f.Avg30Day)
			f.IsAt30DayLow = o.Price <= f.Min30Day*(1+extremeBandPct)
			f.IsAt30DayHigh = o.Price >= f.Max30Day*(1-extremeBandPct)

			facts = append(facts, f)
		}
	}

	return facts, nil
}

// windowStart returns the index of the first row in the trailing window of
// size n ending at (and including) row i.
func windowStart(i, n int) int {
	if s := i - n + 1; s > 0 {
		return s
	}
	return 0
}

func windowAvg(prices []float64, i, n int) float64 {
	start := windowStart(i, n)
	var sum float64
	for _, p := range prices[start : i+1] {
		sum += p
	}
	return sum / float64(i+1-start)
}

func windowMinMax(prices []float64, i, n int) (minP, maxP float64) {
	start := windowStart(i, n)
	minP, maxP = prices[start], prices[start]
	for _, p := range prices[start : i+1] {
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	return minP, maxP
}

func priceTrend(changePct float64) string {
	switch {
	case changePct > trendBandPct:
		return models.TrendRising
	case changePct < -trendBandPct:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

func priceStatus(price, avg30 float64) string {
	switch {
	case price < avg30*(1-trendBandPct):
		return models.StatusGoodDeal
	case price > avg30*(1+trendBandPct):
		return models.StatusPremium
	default:
		return models.StatusNormal
	}
}
