package monitor

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCountMissingCriticalFields(t *testing.T) {
	docs := []map[string]any{
		{"product_id": "P1", "name": "a", "price": 1.0, "brand": "x"},
		{"product_id": "P2", "name": nil, "price": 2.0},
		{"product_id": "P3", "price": nil, "brand": "y"},
	}

	counts := CountMissingCriticalFields(docs, []string{"product_id", "name", "price", "brand"})
	require.Equal(t, 0, counts["product_id"])
	require.Equal(t, 2, counts["name"])
	require.Equal(t, 1, counts["price"])
	require.Equal(t, 1, counts["brand"])
}

func TestDetectSchemaDrift(t *testing.T) {
	baseline := []byte(`{"properties": {
		"product_id": {"type": "string"},
		"price": {"type": "number"},
		"rating": {"type": ["number", "null"]}
	}}`)
	current := []byte(`{"properties": {
		"product_id": {"type": "string"},
		"price": {"type": "string"},
		"discount_pct": {"type": "number"}
	}}`)

	drift, err := DetectSchemaDrift(baseline, current)
	require.NoError(t, err)
	require.True(t, drift.HasDrift)
	require.Equal(t, []string{"discount_pct"}, drift.AddedColumns)
	require.Equal(t, []string{"rating"}, drift.RemovedColumns)
	require.Equal(t, TypeChange{FromType: "number", ToType: "string"}, drift.ModifiedColumns["price"])
}

func TestDetectSchemaDriftNone(t *testing.T) {
	schema := []byte(`{"properties": {"product_id": {"type": "string"}}}`)
	drift, err := DetectSchemaDrift(schema, schema)
	require.NoError(t, err)
	require.False(t, drift.HasDrift)
}

func TestDetectSchemaDriftIntegerSatisfiesNumber(t *testing.T) {
	baseline := []byte(`{"properties": {"price": {"type": "number"}}}`)
	current := []byte(`{"properties": {"price": {"type": "integer"}}}`)

	drift, err := DetectSchemaDrift(baseline, current)
	require.NoError(t, err)
	require.False(t, drift.HasDrift)
}

func TestInferSchemaAgainstContract(t *testing.T) {
	docs := []map[string]any{
		{"product_id": "P1", "price": 9.5, "num_reviews": float64(12), "in_stock": true, "categories": []any{"Audio"}},
		{"product_id": "P2", "price": float64(10), "num_reviews": float64(3), "in_stock": false, "categories": []any{}},
	}

	inferred := InferSchema(docs)

	var doc struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(inferred, &doc))

	require.Equal(t, "string", doc.Properties["product_id"].Type)
	// 9.5 forces number even though a later value is integral.
	require.Equal(t, "number", doc.Properties["price"].Type)
	require.Equal(t, "integer", doc.Properties["num_reviews"].Type)
	require.Equal(t, "boolean", doc.Properties["in_stock"].Type)
	require.Equal(t, "array", doc.Properties["categories"].Type)
}

func TestDetectRecordCountAnomaly(t *testing.T) {
	// 40 against an average of 100 is a 60% drop.
	res := DetectRecordCountAnomaly(40, []int{90, 100, 110}, 0.5)
	require.True(t, res.IsAnomaly)
	require.InDelta(t, -0.6, res.PercentChange, 1e-9)

	// Growth is not an anomaly.
	res = DetectRecordCountAnomaly(200, []int{90, 100, 110}, 0.5)
	require.False(t, res.IsAnomaly)

	// No history, nothing to compare.
	res = DetectRecordCountAnomaly(0, nil, 0.5)
	require.False(t, res.IsAnomaly)
}

func TestCheckArrivalDelay(t *testing.T) {
	status := CheckArrivalDelay(time.Now().Add(-2*time.Hour), 24*time.Hour)
	require.False(t, status.IsDelayed)
	require.InDelta(t, 2.0, status.HoursSinceUpdate, 0.1)

	stale := CheckArrivalDelay(time.Now().Add(-48*time.Hour), 24*time.Hour)
	require.True(t, stale.IsDelayed)

	unknown := CheckArrivalDelay(time.Time{}, time.Hour)
	require.True(t, unknown.IsDelayed, "unknown freshness counts as delayed")
}

func TestWriterSave(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Save("null_counts", map[string]int{"price": 2})
	require.NoError(t, err)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	meta := doc["metadata"].(map[string]any)
	require.Equal(t, "null_counts", meta["metrics_type"])
	require.NotEmpty(t, meta["run_id"])
}
