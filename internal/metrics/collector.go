// Package metrics provides in-memory runtime statistics collection for the
// layout engine: per-stage timings plus counters describing the last
// computed layout.
package metrics

import (
	"math"
	"sync"
	"time"
)

// StageMetrics holds aggregated timings for one pipeline stage.
type StageMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// StageSnapshot provides computed stats from raw stage metrics.
type StageSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// LayoutCounts describes the most recent layout result.
type LayoutCounts struct {
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	Clusters   int    `json:"clusters"`
	MergedIDs  int    `json:"merged_ids"`
	Boundaries int    `json:"boundaries"`
	Mode       string `json:"mode"`
}

// Snapshot represents the full engine statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64        `json:"uptime_seconds"`
	LastLayout    *LayoutCounts  `json:"last_layout,omitempty"`
	Compute       *StageSnapshot `json:"compute,omitempty"`
	LoadGraph     *StageSnapshot `json:"load_graph,omitempty"`
	Publish       *StageSnapshot `json:"publish,omitempty"`
	DBQuery       *StageSnapshot `json:"db_query,omitempty"`
}

// Stage names for the collector.
const (
	StageCompute   = "compute"
	StageLoadGraph = "load_graph"
	StagePublish   = "publish"
	StageDBQuery   = "db_query"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu         sync.RWMutex
	startTime  time.Time
	stages     map[string]*StageMetrics
	lastLayout *LayoutCounts
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		stages:    make(map[string]*StageMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a stage.
// Caller must hold write lock.
func (c *Collector) getOrCreate(stage string) *StageMetrics {
	m, ok := c.stages[stage]
	if !ok {
		m = &StageMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.stages[stage] = m
	}
	return m
}

// RecordTiming records timing for a pipeline stage.
func (c *Collector) RecordTiming(stage string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(stage)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordLayout stores the shape of the most recent layout result.
func (c *Collector) RecordLayout(counts LayoutCounts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastLayout = &counts
}

// snapshotStage creates a snapshot for a stage, returning nil if no data.
func snapshotStage(m *StageMetrics) *StageSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &StageSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Compute:       snapshotStage(c.stages[StageCompute]),
		LoadGraph:     snapshotStage(c.stages[StageLoadGraph]),
		Publish:       snapshotStage(c.stages[StagePublish]),
		DBQuery:       snapshotStage(c.stages[StageDBQuery]),
	}
	if c.lastLayout != nil {
		counts := *c.lastLayout
		snap.LastLayout = &counts
	}
	return snap
}
