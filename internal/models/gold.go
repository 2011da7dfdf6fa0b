package models

import "time"

// Rating bands for ProductDimension.RatingCategory.
const (
	RatingExcellent = "Excellent"
	RatingVeryGood  = "Very Good"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
	RatingUnrated   = "Unrated"
)

// Price bands for ProductDimension.PriceCategory.
const (
	PriceDiscount = "Discount"
	PricePremium  = "Premium"
	PriceRegular  = "Regular"
)

// Trend labels for PriceHistoryFact.PriceTrend.
const (
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendStable  = "Stable"
)

// Status labels for PriceHistoryFact.PriceStatus.
const (
	StatusGoodDeal = "Good Deal"
	StatusPremium  = "Premium Pricing"
	StatusNormal   = "Normal Pricing"
)

// ProductDimension is the current-state snapshot of a product, one row per
// product_id, rebuilt wholesale on every aggregation run.
type ProductDimension struct {
	ProductID      string   `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Brand          string   `json:"brand"`
	LatestPrice    float64  `json:"latest_price"`
	MinPrice       float64  `json:"min_price"`
	MaxPrice       float64  `json:"max_price"`
	AvgPrice       float64  `json:"avg_price"`
	PriceStdDev    float64  `json:"price_stddev"`
	Rating         *float64 `json:"rating"`
	NumReviews     int64    `json:"num_reviews"`
	IsInStock      bool     `json:"is_in_stock"`
	Categories     []string `json:"categories"`
	RatingCategory string   `json:"rating_category"`
	PriceCategory  string   `json:"price_category"`
}

// PriceHistoryFact is the point-in-time price record with trailing-window
// aggregates, one row per input observation. Windows are row-count framed
// (the most recent N rows of the same product+category partition), not
// calendar framed, so a sparse "7-day" average may span more than 7 days.
type PriceHistoryFact struct {
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Brand          string     `json:"brand"`
	Category       string     `json:"category"`
	ScrapeDate     time.Time  `json:"scrape_date"`
	Price          float64    `json:"price"`
	PreviousPrice  *float64   `json:"previous_price"`
	PreviousDate   *time.Time `json:"previous_date"`
	PriceChangePct float64    `json:"price_change_pct"`
	Avg7Day        float64    `json:"avg_7day"`
	Avg30Day       float64    `json:"avg_30day"`
	Min30Day       float64    `json:"min_30day"`
	Max30Day       float64    `json:"max_30day"`
	PriceTrend     string     `json:"price_trend"`
	PriceStatus    string     `json:"price_status"`
	IsAt30DayLow   bool       `json:"is_at_30day_low"`
	IsAt30DayHigh  bool       `json:"is_at_30day_high"`
}
