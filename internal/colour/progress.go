package colour

import (
	"math"
	"sync/atomic"
)

// Stage identifies the computation currently reporting progress.
type Stage int32

const (
	StageIdle Stage = iota
	StageClustering
	StageIndexing
)

// String returns the human-readable label for the stage.
func (s Stage) String() string {
	switch s {
	case StageClustering:
		return "Computing palette colours"
	case StageIndexing:
		return "Generating indexed image"
	default:
		return "Idle"
	}
}

// Progress receives advisory progress updates from long-running computations.
// Implementations must not block; the fraction is in [0,1].
type Progress interface {
	Report(stage Stage, fraction float64)
}

// NopProgress discards all updates.
type NopProgress struct{}

// Report implements Progress.
func (NopProgress) Report(Stage, float64) {}

// Tracker is a Progress that stores the latest update for a host to poll.
// It is safe for concurrent use. Within a stage the stored fraction never
// decreases; a report for a different stage replaces it.
type Tracker struct {
	// state holds the stage in the high 32 bits and the float32 fraction
	// bits in the low 32 bits.
	state atomic.Uint64
}

// NewTracker creates an idle Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Report implements Progress.
func (t *Tracker) Report(stage Stage, fraction float64) {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	next := packProgress(stage, math.Max(0, math.Min(1, fraction)))
	for {
		cur := t.state.Load()
		// Non-negative float32 bit patterns order the same as their values.
		if cur>>32 == next>>32 && uint32(cur) >= uint32(next) {
			return
		}
		if t.state.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Snapshot returns the most recently reported stage and fraction.
func (t *Tracker) Snapshot() (Stage, float64) {
	return unpackProgress(t.state.Load())
}

// Reset returns the tracker to the idle state.
func (t *Tracker) Reset() {
	t.state.Store(packProgress(StageIdle, 0))
}

func packProgress(stage Stage, fraction float64) uint64 {
	return uint64(uint32(stage))<<32 | uint64(math.Float32bits(float32(fraction)))
}

func unpackProgress(v uint64) (Stage, float64) {
	return Stage(int32(v >> 32)), float64(math.Float32frombits(uint32(v)))
}

// progressOrNop substitutes NopProgress for a nil reporter.
func progressOrNop(p Progress) Progress {
	if p == nil {
		return NopProgress{}
	}
	return p
}
