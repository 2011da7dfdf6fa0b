package model

import "time"

type Product struct {
	ProductID      string   `gorm:"column:product_id;primaryKey" json:"product_id"`
	ProductName    string   `gorm:"column:product_name" json:"product_name"`
	Brand          string   `gorm:"column:brand" json:"brand"`
	LatestPrice    float64  `gorm:"column:latest_price;type:Float64" json:"latest_price"`
	MinPrice       float64  `gorm:"column:min_price;type:Float64" json:"min_price"`
	MaxPrice       float64  `gorm:"column:max_price;type:Float64" json:"max_price"`
	AvgPrice       float64  `gorm:"column:avg_price;type:Float64" json:"avg_price"`
	PriceStdDev    float64  `gorm:"column:price_stddev;type:Float64" json:"price_stddev"`
	Rating         *float64 `gorm:"column:rating;type:Nullable(Float64)" json:"rating"`
	NumReviews     int64    `gorm:"column:num_reviews" json:"num_reviews"`
	IsInStock      bool     `gorm:"column:is_in_stock" json:"is_in_stock"`
	RatingCategory string   `gorm:"column:rating_category" json:"rating_category"`
	PriceCategory  string   `gorm:"column:price_category" json:"price_category"`
}

func (Product) TableName() string {
	return "dim_product"
}

type PriceHistory struct {
	ProductID      string     `gorm:"column:product_id;primaryKey" json:"product_id"`
	ProductName    string     `gorm:"column:product_name" json:"product_name"`
	Brand          string     `gorm:"column:brand" json:"brand"`
	Category       string     `gorm:"column:category;primaryKey" json:"category"`
	ScrapeDate     time.Time  `gorm:"column:scrape_date;primaryKey" json:"scrape_date"`
	Price          float64    `gorm:"column:price;type:Float64" json:"price"`
	PreviousPrice  *float64   `gorm:"column:previous_price;type:Nullable(Float64)" json:"previous_price"`
	PreviousDate   *time.Time `gorm:"column:previous_date;type:Nullable(DateTime)" json:"previous_date"`
	PriceChangePct float64    `gorm:"column:price_change_pct;type:Float64" json:"price_change_pct"`
	Avg7Day        float64    `gorm:"column:avg_7day;type:Float64" json:"avg_7day"`
	Avg30Day       float64    `gorm:"column:avg_30day;type:Float64" json:"avg_30day"`
	Min30Day       float64    `gorm:"column:min_30day;type:Float64" json:"min_30day"`
	Max30Day       float64    `gorm:"column:max_30day;type:Float64" json:"max_30day"`
	PriceTrend     string     `gorm:"column:price_trend" json:"price_trend"`
	PriceStatus    string     `gorm:"column:price_status" json:"price_status"`
	IsAt30DayLow   bool       `gorm:"column:is_at_30day_low" json:"is_at_30day_low"`
	IsAt30DayHigh  bool       `gorm:"column:is_at_30day_high" json:"is_at_30day_high"`
}

func (PriceHistory) TableName() string {
	return "fct_price_history"
}
