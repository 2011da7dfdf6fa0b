// Package monitor tracks data quality metrics for pipeline health: null
// counts in critical fields, schema drift against the contract, record
// count anomalies, and data arrival delay. Metrics are persisted as
// timestamped JSON files so runs can be compared after the fact.
package monitor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CriticalFields are the columns a raw product cannot be useful without.
// Overridable via configuration.
var CriticalFields = []string{"product_id", "name", "price", "brand"}

// CountMissingCriticalFields counts, per critical field, how many documents
// miss the field entirely or carry an explicit null.
func CountMissingCriticalFields(docs []map[string]any, fields []string) map[string]int {
	counts := make(map[string]int, len(fields))
	for _, f := range fields {
		counts[f] = 0
	}
	for _, doc := range docs {
		for _, f := range fields {
			if v, ok := doc[f]; !ok || v == nil {
				counts[f]++
			}
		}
	}
	return counts
}

// TypeChange records a column whose declared type changed between schemas.
type TypeChange struct {
	FromType string `json:"from_type"`
	ToType   string `json:"to_type"`
}

// DriftResult describes the difference between the contract schema and the
// schema inferred from live data.
type DriftResult struct {
	AddedColumns    []string              `json:"added_columns"`
	RemovedColumns  []string              `json:"removed_columns"`
	ModifiedColumns map[string]TypeChange `json:"modified_columns"`
	HasDrift        bool                  `json:"has_drift"`
}

// DetectSchemaDrift compares two JSON Schema documents column by column.
// Both must be object schemas with a "properties" map.
func DetectSchemaDrift(baseline, current []byte) (DriftResult, error) {
	baseProps, err := schemaProperties(baseline)
	if err != nil {
		return DriftResult{}, fmt.Errorf("baseline schema: %w", err)
	}
	curProps, err := schemaProperties(current)
	if err != nil {
		return DriftResult{}, fmt.Errorf("current schema: %w", err)
	}

	result := DriftResult{
		AddedColumns:    []string{},
		RemovedColumns:  []string{},
		ModifiedColumns: make(map[string]TypeChange),
	}

	for col := range curProps {
		if _, ok := baseProps[col]; !ok {
			result.AddedColumns = append(result.AddedColumns, col)
		}
	}
	for col, baseType := range baseProps {
		curType, ok := curProps[col]
		if !ok {
			result.RemovedColumns = append(result.RemovedColumns, col)
			continue
		}
		// Integral values infer as "integer"; that is not drift when the
		// contract allows any number.
		if baseType == "number" && curType == "integer" {
			continue
		}
		if baseType != curType {
			result.ModifiedColumns[col] = TypeChange{FromType: baseType, ToType: curType}
		}
	}

	result.HasDrift = len(result.AddedColumns) > 0 ||
		len(result.RemovedColumns) > 0 ||
		len(result.ModifiedColumns) > 0
	return result, nil
}

// schemaProperties extracts column name -> primary type from a JSON Schema.
// Union types like ["number","null"] collapse to their non-null member.
func schemaProperties(schema []byte) (map[string]string, error) {
	var doc struct {
		Properties map[string]struct {
			Type any `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(schema, &doc); err != nil {
		return nil, err
	}

	props := make(map[string]string, len(doc.Properties))
	for col, p := range doc.Properties {
		props[col] = primaryType(p.Type)
	}
	return props, nil
}

func primaryType(t any) string {
	switch v := t.(type) {
	case string:
		return v
	case []any:
		for _, m := range v {
			if s, ok := m.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}

// InferSchema builds a minimal JSON Schema from live documents, for drift
// detection against the contract. Numeric columns are "integer" only when
// every observed value is integral.
func InferSchema(docs []map[string]any) []byte {
	types := make(map[string]string)

	for _, doc := range docs {
		for col, v := range doc {
			inferred := inferType(v)
			if inferred == "" {
				continue
			}
			prev, seen := types[col]
			switch {
			case !seen:
				types[col] = inferred
			case prev == "integer" && inferred == "number":
				types[col] = "number"
			}
		}
	}

	properties := make(map[string]map[string]string, len(types))
	for col, t := range types {
		properties[col] = map[string]string{"type": t}
	}

	out, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
	})
	return out
}

func inferType(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "string"
	}
}

// AnomalyResult reports whether the current record count dropped
// anomalously against the trailing historical counts.
type AnomalyResult struct {
	IsAnomaly          bool    `json:"is_anomaly"`
	PercentChange      float64 `json:"percent_change"`
	CurrentCount       int     `json:"current_count"`
	AvgHistoricalCount float64 `json:"avg_historical_count"`
}

// DetectRecordCountAnomaly flags a run whose record count dropped by more
// than threshold (a fraction, e.g. 0.5) against the historical average.
// Count growth is never an anomaly here; only drops lose data.
func DetectRecordCountAnomaly(current int, historical []int, threshold float64) AnomalyResult {
	if len(historical) == 0 {
		return AnomalyResult{CurrentCount: current}
	}

	var sum int
	for _, c := range historical {
		sum += c
	}
	avg := float64(sum) / float64(len(historical))

	if avg == 0 {
		return AnomalyResult{IsAnomaly: current == 0, CurrentCount: current}
	}

	change := (float64(current) - avg) / avg
	return AnomalyResult{
		IsAnomaly:          change < -threshold,
		PercentChange:      change,
		CurrentCount:       current,
		AvgHistoricalCount: avg,
	}
}

// ArrivalStatus reports how stale the newest observed record is.
type ArrivalStatus struct {
	LatestRecord     time.Time `json:"latest_record"`
	HoursSinceUpdate float64   `json:"hours_since_update"`
	IsDelayed        bool      `json:"is_delayed"`
}

// CheckArrivalDelay checks whether data newer than maxDelay has arrived.
// A zero latest time counts as delayed: the safe assumption when freshness
// cannot be proven.
func CheckArrivalDelay(latest time.Time, maxDelay time.Duration) ArrivalStatus {
	if latest.IsZero() {
		return ArrivalStatus{IsDelayed: true}
	}

	since := time.Since(latest)
	return ArrivalStatus{
		LatestRecord:     latest,
		HoursSinceUpdate: since.Hours(),
		IsDelayed:        since > maxDelay,
	}
}

// Writer persists metrics documents under a base directory, one
// timestamped JSON file per metric type per run.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes one metrics payload and returns the file path.
func (w *Writer) Save(metricsType string, payload any) (string, error) {
	now := time.Now().UTC()

	doc := map[string]any{
		"metrics": payload,
		"metadata": map[string]any{
			"run_id":       uuid.NewString(),
			"timestamp":    now.Format(time.RFC3339),
			"metrics_type": metricsType,
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}

	dir := filepath.Join(w.dir, metricsType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create metrics dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", metricsType, now.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metrics: %w", err)
	}
	return path, nil
}
