package gold

import (
	"math"

	"shelfwatch/internal/models"
)

// validateObservations enforces the Cleaned Observation Store contract on
// the aggregation input. It fails fast on the first bad row rather than
// dropping it: aggregating a corrupt dataset would silently skew every
// downstream number.
func validateObservations(observations []models.Observation) error {
	for i, o := range observations {
		switch {
		case o.ProductID == "":
			return &SchemaError{Row: i, ProductID: o.ProductID, Reason: "missing product_id"}
		case o.Category == "":
			return &SchemaError{Row: i, ProductID: o.ProductID, Reason: "missing category"}
		case o.ScrapeDate.IsZero():
			return &SchemaError{Row: i, ProductID: o.ProductID, Reason: "missing scrape_date"}
		case math.IsNaN(o.Price) || math.IsInf(o.Price, 0):
			return &SchemaError{Row: i, ProductID: o.ProductID, Reason: "price is NaN or Inf"}
		case o.Price < 0:
			return &SchemaError{Row: i, ProductID: o.ProductID, Reason: "negative price"}
		}
		if o.Rating != nil && (*o.Rating < 0 || *o.Rating > 5) {
			return &SchemaError{Row: i, ProductID: o.ProductID, Reason: "rating outside [0,5]"}
		}
	}
	return nil
}
