package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/discochess/gamereview/internal/stats"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %q not found", name)
	return nil
}

func TestCollector_Counter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricGames, 1)
	c.IncCounter(stats.MetricGames, 2)

	mf := gather(t, reg, stats.MetricGames)
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Errorf("counter = %v, want 3", got)
	}
}

func TestCollector_Gauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge("gamereview_test_gauge", 7)
	c.SetGauge("gamereview_test_gauge", 5)

	mf := gather(t, reg, "gamereview_test_gauge")
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 5 {
		t.Errorf("gauge = %v, want 5", got)
	}
}

func TestCollector_Histogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram(stats.MetricAnalysisSeconds, 0.25)
	c.ObserveHistogram(stats.MetricAnalysisSeconds, 1.5)

	mf := gather(t, reg, stats.MetricAnalysisSeconds)
	if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("histogram sample count = %d, want 2", got)
	}
}

func TestCollector_ReuseAcrossInstances(t *testing.T) {
	reg := prometheus.NewRegistry()

	New(reg).IncCounter(stats.MetricMoves, 1)
	New(reg).IncCounter(stats.MetricMoves, 1)

	mf := gather(t, reg, stats.MetricMoves)
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("counter = %v, want 2 (shared across instances)", got)
	}
}
