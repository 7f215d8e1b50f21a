// Package analyzerfx provides an fx module for a game analyzer backed
// by a local engine and prometheus metrics.
package analyzerfx

import (
	"context"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/config"
	"github.com/discochess/gamereview/internal/stats"
	"github.com/discochess/gamereview/internal/stats/prometheus"
)

// Module provides a *gamereview.Analyzer with prometheus metrics.
// Requires a *zap.Logger and a config.Config to be provided.
var Module = fx.Module("analyzer",
	fx.Provide(
		newRegistry,
		newStatsCollector,
		newAnalyzer,
	),
)

func newRegistry() *prom.Registry {
	return prom.NewRegistry()
}

func newStatsCollector(registry *prom.Registry) stats.Collector {
	return prometheus.New(registry)
}

// Params holds dependencies for creating the analyzer.
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided analyzer.
type Result struct {
	fx.Out

	Analyzer *gamereview.Analyzer
}

func newAnalyzer(p Params) (Result, error) {
	opts := []gamereview.Option{
		gamereview.WithStats(p.Collector),
		gamereview.WithLogger(p.Logger.Named("gamereview")),
		gamereview.WithDepth(p.Config.Depth),
		gamereview.WithCacheSize(p.Config.CacheSize),
	}
	if p.Config.EnginePath != "" {
		opts = append(opts, gamereview.WithEnginePath(p.Config.EnginePath))
	}
	if p.Config.EngineCacheDir != "" {
		opts = append(opts, gamereview.WithEngineCacheDir(p.Config.EngineCacheDir))
	}
	if p.Config.DisableDownload {
		opts = append(opts, gamereview.WithoutEngineDownload())
	}
	if p.Config.BookDir != "" {
		opts = append(opts, gamereview.WithBookDir(p.Config.BookDir))
	}

	analyzer, err := gamereview.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return analyzer.Close()
		},
	})

	return Result{Analyzer: analyzer}, nil
}
