// Package performance tracks in-process conversion metrics served by the
// /metrics endpoint.
package performance

import (
	"sync"
	"time"
)

// Tracker accumulates conversion metrics for the lifetime of the process.
type Tracker struct {
	mu sync.RWMutex

	totalConversions int
	totalWarnings    int
	totalDuration    time.Duration

	recent []ConversionTiming
}

// ConversionTiming records one conversion.
type ConversionTiming struct {
	ID       string        `json:"id"`
	Matchup  string        `json:"matchup"`
	Warnings int           `json:"warnings"`
	Duration time.Duration `json:"duration_ns"`
}

// Metrics is the snapshot served over HTTP.
type Metrics struct {
	TotalConversions  int                `json:"total_conversions"`
	TotalWarnings     int                `json:"total_warnings"`
	AvgDurationMillis float64            `json:"avg_duration_ms"`
	Recent            []ConversionTiming `json:"recent"`
}

const recentLimit = 100

var globalTracker = &Tracker{recent: make([]ConversionTiming, 0, recentLimit)}

// GetTracker returns the global tracker.
func GetTracker() *Tracker {
	return globalTracker
}

// RecordConversion adds one conversion to the tally.
func (t *Tracker) RecordConversion(id, matchup string, warnings int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalConversions++
	t.totalWarnings += warnings
	t.totalDuration += duration

	if len(t.recent) == recentLimit {
		copy(t.recent, t.recent[1:])
		t.recent = t.recent[:recentLimit-1]
	}
	t.recent = append(t.recent, ConversionTiming{
		ID:       id,
		Matchup:  matchup,
		Warnings: warnings,
		Duration: duration,
	})
}

// GetMetrics returns a snapshot safe to serialize.
func (t *Tracker) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := Metrics{
		TotalConversions: t.totalConversions,
		TotalWarnings:    t.totalWarnings,
		Recent:           append([]ConversionTiming(nil), t.recent...),
	}
	if t.totalConversions > 0 {
		m.AvgDurationMillis = float64(t.totalDuration.Milliseconds()) / float64(t.totalConversions)
	}
	return m
}

// Reset clears all metrics.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalConversions = 0
	t.totalWarnings = 0
	t.totalDuration = 0
	t.recent = t.recent[:0]
}
