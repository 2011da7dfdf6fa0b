// Package models holds the data shapes flowing through the pipeline:
// raw scraped products, cleaned observations, and the gold-layer tables.
package models

import "time"

// RawProduct is one scraped product document, exactly as published by the
// scraper. It matches the JSON Schema contract in internal/contract.
type RawProduct struct {
	URL        string   `json:"url"`
	ScrapeDate string   `json:"scrape_date"`
	ProductID  string   `json:"product_id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Description string  `json:"description,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	NumReviews *int64   `json:"num_reviews,omitempty"`
	InStock    bool     `json:"in_stock"`
	Brand      string   `json:"brand"`
	Categories []string `json:"categories"`
	ImageURLs  []string `json:"image_urls,omitempty"`
}

// Observation is one cleaned row of the silver layer: a single product in a
// single category at a single scrape event. Multiple observations per
// product accumulate over time; (product_id, category, scrape_date) is the
// natural key for trend computation.
type Observation struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Rating      *float64  `json:"rating"`
	NumReviews  *int64    `json:"num_reviews"`
	InStock     bool      `json:"in_stock"`
	ScrapeDate  time.Time `json:"scrape_date"`
	Description string    `json:"description"`
}
