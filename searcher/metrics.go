package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one Search call.
type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Iterations   int
	FullPlayouts int
	Nodes        int
	ShortCircuit bool
}

type MetricsCollector interface {
	Start(goroutines int)
	AddIteration()
	AddFullPlayout()
	AddNodes(n int)
	SetShortCircuit()
	Complete() SearchMetric
}

type metricsCollector struct {
	goroutines   int
	startTime    time.Time
	iterations   atomic.Int64
	fullPlayouts atomic.Int64
	nodes        atomic.Int64
	shortCircuit atomic.Bool
}

func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

// Start resets the collector for one search so a reused collector reports
// per-call numbers, not running totals.
func (m *metricsCollector) Start(goroutines int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.iterations.Store(0)
	m.fullPlayouts.Store(0)
	m.nodes.Store(0)
	m.shortCircuit.Store(false)
}

func (m *metricsCollector) AddIteration() {
	m.iterations.Add(1)
}

func (m *metricsCollector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *metricsCollector) AddNodes(n int) {
	m.nodes.Add(int64(n))
}

func (m *metricsCollector) SetShortCircuit() {
	m.shortCircuit.Store(true)
}

func (m *metricsCollector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Iterations:   int(m.iterations.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Nodes:        int(m.nodes.Load()),
		ShortCircuit: m.shortCircuit.Load(),
	}
}

type noMetricsCollector struct{}

func NewNoMetricsCollector() MetricsCollector {
	return &noMetricsCollector{}
}

func (m *noMetricsCollector) Start(goroutines int)       {}
func (m *noMetricsCollector) AddIteration()              {}
func (m *noMetricsCollector) AddFullPlayout()            {}
func (m *noMetricsCollector) AddNodes(n int)             {}
func (m *noMetricsCollector) SetShortCircuit()           {}
func (m *noMetricsCollector) Complete() SearchMetric     { return SearchMetric{} }
