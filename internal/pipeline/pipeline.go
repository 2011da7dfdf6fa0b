// Package pipeline runs the ETL stages in order: scrape, transform,
// validate, aggregate. Each stage is also runnable on its own, and any
// stage failure aborts the run; the scheduler that owns retries lives
// outside this repository.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"shelfwatch/internal/contract"
	"shelfwatch/internal/gold"
	"shelfwatch/internal/models"
	"shelfwatch/internal/monitor"
	"shelfwatch/internal/silver"
	"shelfwatch/internal/storage"
)

// Stage names accepted by Run.
const (
	StageScrape    = "scrape"
	StageTransform = "transform"
	StageValidate  = "validate"
	StageAggregate = "aggregate"
	StageAll       = "all"
)

// historyDepth is how many past runs feed the record count anomaly check.
const historyDepth = 7

// Publisher sends scraped products downstream, normally to Kafka.
type Publisher interface {
	Publish(ctx context.Context, products []models.RawProduct) error
}

// ProductScraper produces raw products from the target site.
type ProductScraper interface {
	Run(ctx context.Context) ([]models.RawProduct, error)
}

// Config holds pipeline-level settings.
type Config struct {
	// CriticalFields are the raw columns tracked by the null count metric.
	CriticalFields []string

	// AnomalyThreshold is the fractional record count drop that raises
	// an alert (e.g. 0.5 for half).
	AnomalyThreshold float64

	// MaxArrivalDelay is how stale the newest raw record may be before
	// the freshness check alerts. Zero disables the check.
	MaxArrivalDelay time.Duration
}

// Pipeline wires the stages together over shared storage.
type Pipeline struct {
	store     storage.Storage
	scraper   ProductScraper
	publisher Publisher
	validator *contract.ProductValidator
	metrics   *monitor.Writer
	alerter   *monitor.Alerter
	logger    *slog.Logger
	cfg       Config
}

func New(
	store storage.Storage,
	productScraper ProductScraper,
	publisher Publisher,
	validator *contract.ProductValidator,
	metrics *monitor.Writer,
	alerter *monitor.Alerter,
	logger *slog.Logger,
	cfg Config,
) *Pipeline {
	if len(cfg.CriticalFields) == 0 {
		cfg.CriticalFields = monitor.CriticalFields
	}
	return &Pipeline{
		store:     store,
		scraper:   productScraper,
		publisher: publisher,
		validator: validator,
		metrics:   metrics,
		alerter:   alerter,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes the requested stage, or every stage in order for StageAll.
func (p *Pipeline) Run(ctx context.Context, stage string) error {
	stages := map[string]func(context.Context) error{
		StageScrape:    p.runScrape,
		StageTransform: p.runTransform,
		StageValidate:  p.runValidate,
		StageAggregate: p.runAggregate,
	}

	if stage != StageAll {
		fn, ok := stages[stage]
		if !ok {
			return fmt.Errorf("unknown stage %q", stage)
		}
		return p.timed(ctx, stage, fn)
	}

	for _, name := range []string{StageScrape, StageValidate, StageTransform, StageAggregate} {
		if err := p.timed(ctx, name, stages[name]); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}
	return nil
}

func (p *Pipeline) timed(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	p.logger.Info("stage started", "stage", name)
	if err := fn(ctx); err != nil {
		p.logger.Error("stage failed", "stage", name, "duration", time.Since(start), "error", err)
		return err
	}
	p.logger.Info("stage finished", "stage", name, "duration", time.Since(start))
	return nil
}

// runScrape scrapes the catalog and publishes the results to Kafka, where
// the ingester picks them up.
func (p *Pipeline) runScrape(ctx context.Context) error {
	products, err := p.scraper.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if err := p.publisher.Publish(ctx, products); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// runValidate replays the raw history through the schema contract and
// records data quality metrics. Contract violations alert and fail the
// run; they are never silently dropped here.
func (p *Pipeline) runValidate(ctx context.Context) error {
	raw, err := p.store.FetchRawProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch raw products: %w", err)
	}

	docs := make([]map[string]any, 0, len(raw))
	var violations []string
	for _, product := range raw {
		data, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("serialize product %s: %w", product.ProductID, err)
		}
		if err := p.validator.Validate(data); err != nil {
			violations = append(violations, fmt.Sprintf("product %s: %v", product.ProductID, err))
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err == nil {
			docs = append(docs, doc)
		}
	}

	p.recordQualityMetrics(ctx, docs)

	if len(violations) > 0 {
		p.alerter.ValidationFailure(ctx, "raw_product", violations)
		return fmt.Errorf("raw data validation failed: %d violations", len(violations))
	}
	return nil
}

// recordQualityMetrics persists the monitoring metrics for this run and
// alerts on drift and count anomalies. Metric persistence failures are
// logged, not fatal: monitoring must never break the pipeline it watches.
func (p *Pipeline) recordQualityMetrics(ctx context.Context, docs []map[string]any) {
	nulls := monitor.CountMissingCriticalFields(docs, p.cfg.CriticalFields)
	if _, err := p.metrics.Save("null_counts", nulls); err != nil {
		p.logger.Warn("failed to save null count metrics", "error", err)
	}

	drift, err := monitor.DetectSchemaDrift(contract.SchemaJSON(), monitor.InferSchema(docs))
	if err != nil {
		p.logger.Warn("schema drift check failed", "error", err)
	} else {
		if _, err := p.metrics.Save("schema_drift", drift); err != nil {
			p.logger.Warn("failed to save drift metrics", "error", err)
		}
		if drift.HasDrift {
			msg := fmt.Sprintf("SCHEMA DRIFT ALERT: added=%v removed=%v modified=%v",
				drift.AddedColumns, drift.RemovedColumns, drift.ModifiedColumns)
			if err := p.alerter.Slack(ctx, msg); err != nil {
				p.logger.Error("failed to send drift alert", "error", err)
			}
		}
	}

	history := p.metrics.RecentRecordCounts(historyDepth)
	anomaly := monitor.DetectRecordCountAnomaly(len(docs), history, p.cfg.AnomalyThreshold)
	if _, err := p.metrics.Save("record_count", anomaly); err != nil {
		p.logger.Warn("failed to save record count metrics", "error", err)
	}
	if anomaly.IsAnomaly {
		msg := fmt.Sprintf("RECORD COUNT ANOMALY: current=%d historical_avg=%.1f change=%.1f%%",
			anomaly.CurrentCount, anomaly.AvgHistoricalCount, anomaly.PercentChange*100)
		if err := p.alerter.Slack(ctx, msg); err != nil {
			p.logger.Error("failed to send anomaly alert", "error", err)
		}
	}

	if p.cfg.MaxArrivalDelay > 0 {
		arrival := monitor.CheckArrivalDelay(latestScrapeDate(docs), p.cfg.MaxArrivalDelay)
		if _, err := p.metrics.Save("arrival_delay", arrival); err != nil {
			p.logger.Warn("failed to save arrival delay metrics", "error", err)
		}
		if arrival.IsDelayed {
			msg := fmt.Sprintf("DATA ARRIVAL DELAY: newest record is %.1f hours old", arrival.HoursSinceUpdate)
			if err := p.alerter.Slack(ctx, msg); err != nil {
				p.logger.Error("failed to send arrival delay alert", "error", err)
			}
		}
	}
}

// latestScrapeDate extracts the newest scrape_date across the raw documents.
// Unparseable dates are skipped; the contract check reports those separately.
func latestScrapeDate(docs []map[string]any) time.Time {
	var latest time.Time
	for _, doc := range docs {
		raw, ok := doc["scrape_date"].(string)
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if ts, err = time.Parse("2006-01-02", raw); err != nil {
				continue
			}
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest
}

// runTransform rebuilds the cleaned observation store from the full raw
// history.
func (p *Pipeline) runTransform(ctx context.Context) error {
	raw, err := p.store.FetchRawProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch raw products: %w", err)
	}

	transformer := silver.NewTransformer(p.logger)
	observations, err := transformer.Transform(raw)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	if err := p.store.ReplaceObservations(ctx, observations); err != nil {
		return fmt.Errorf("replace observations: %w", err)
	}
	return nil
}

// runAggregate rebuilds both gold tables from the full observation
// history and swaps them in together.
func (p *Pipeline) runAggregate(ctx context.Context) error {
	observations, err := p.store.FetchObservations(ctx)
	if err != nil {
		return fmt.Errorf("fetch observations: %w", err)
	}

	dims, err := gold.BuildProductDimension(observations)
	if err != nil {
		return fmt.Errorf("build product dimension: %w", err)
	}
	facts, err := gold.BuildPriceHistory(observations)
	if err != nil {
		return fmt.Errorf("build price history: %w", err)
	}

	if err := p.store.ReplaceGold(ctx, dims, facts); err != nil {
		return fmt.Errorf("replace gold tables: %w", err)
	}

	p.logger.Info("gold layer rebuilt",
		"observations", len(observations),
		"products", len(dims),
		"history_rows", len(facts))
	return nil
}
