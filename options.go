package gamereview

import (
	"context"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/book"
	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/stats"
)

// DefaultDepth is the search depth used when a request does not set one.
const DefaultDepth = 12

// DefaultCacheSize is the default evaluation cache capacity.
const DefaultCacheSize = 4096

// Evaluator produces candidate lines for positions. It is the analyzer's
// view of one engine session: a serial resource owned by a single game
// analysis and closed when the analysis ends.
type Evaluator interface {
	// Analyze returns up to lines candidate lines for the position,
	// best first, centipawns from White's perspective.
	Analyze(ctx context.Context, fen string, depth, lines int) (engine.Evaluation, error)

	// Close releases the session.
	Close() error
}

// EvaluatorFactory opens a fresh Evaluator for one game analysis.
type EvaluatorFactory func(ctx context.Context) (Evaluator, error)

// Option configures an Analyzer.
type Option interface {
	apply(*options)
}

// options holds the analyzer configuration.
type options struct {
	book      *book.Index
	bookDir   string
	resolver  engine.ResolverConfig
	factory   EvaluatorFactory
	depth     int
	cacheSize int
	stats     stats.Collector
	logger    *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		depth:     DefaultDepth,
		cacheSize: DefaultCacheSize,
		stats:     stats.NewNoop(),
		logger:    zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithBook sets a pre-built opening book index.
func WithBook(ix *book.Index) Option {
	return optionFunc(func(o *options) {
		o.book = ix
	})
}

// WithBookDir loads the opening book from a directory of .tsv files
// (optionally compressed). Loading is best-effort; a missing directory
// yields an empty book.
func WithBookDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.bookDir = dir
	})
}

// WithEnginePath sets an explicit engine binary, skipping discovery.
func WithEnginePath(path string) Option {
	return optionFunc(func(o *options) {
		o.resolver.Path = path
	})
}

// WithEngineCacheDir sets where downloaded engine binaries are kept.
func WithEngineCacheDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.resolver.CacheDir = dir
	})
}

// WithoutEngineDownload disables fetching the engine release artifact.
func WithoutEngineDownload() Option {
	return optionFunc(func(o *options) {
		o.resolver.DisableDownload = true
	})
}

// WithEvaluatorFactory replaces engine resolution entirely. Intended for
// tests and for hosts that manage their own engine processes.
func WithEvaluatorFactory(f EvaluatorFactory) Option {
	return optionFunc(func(o *options) {
		o.factory = f
	})
}

// WithDepth sets the default search depth for requests that omit one.
func WithDepth(depth int) Option {
	return optionFunc(func(o *options) {
		o.depth = depth
	})
}

// WithCacheSize sets the evaluation cache capacity.
func WithCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
