package gold

import "fmt"

// SchemaError reports an observation that violates the cleaned-store
// contract. It identifies the offending row so upstream data problems can be
// traced back; any SchemaError aborts the whole aggregation run, there is no
// partial-success mode.
type SchemaError struct {
	Row       int
	ProductID string
	Reason    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("observation %d (product_id=%q): %s", e.Row, e.ProductID, e.Reason)
}
