// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Analysis metrics.
	MetricGames           = "gamereview_games_total"
	MetricMoves           = "gamereview_moves_classified_total"
	MetricBookMoves       = "gamereview_book_moves_total"
	MetricAnalysisSeconds = "gamereview_analysis_seconds"

	// Evaluator metrics.
	MetricEvaluations  = "gamereview_positions_evaluated_total"
	MetricEvalFailures = "gamereview_eval_failures_total"

	// Evaluation cache metrics.
	MetricCacheHits   = "gamereview_eval_cache_hits_total"
	MetricCacheMisses = "gamereview_eval_cache_misses_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
