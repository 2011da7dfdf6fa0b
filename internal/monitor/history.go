package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// RecentRecordCounts loads the record counts persisted by the last n runs,
// oldest first. Unreadable files are skipped; a short history just means
// less signal for anomaly detection.
func (w *Writer) RecentRecordCounts(n int) []int {
	dir := filepath.Join(w.dir, "record_count")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	// Filenames embed the run timestamp, so name order is time order.
	sort.Strings(names)
	if len(names) > n {
		names = names[len(names)-n:]
	}

	counts := make([]int, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var doc struct {
			Metrics struct {
				CurrentCount int `json:"current_count"`
			} `json:"metrics"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		counts = append(counts, doc.Metrics.CurrentCount)
	}
	return counts
}
