package slam

import "sync/atomic"

// Statistics tracks the run's counters with thread-safe operations. Any
// operator may increment; only the terminating operator reads. All
// counters are monotonically non-decreasing.
type Statistics struct {
	ticks     atomic.Int64
	detected  atomic.Int64
	tracked   atomic.Int64
	landmarks atomic.Int64
}

// NewStatistics returns a zeroed counter set.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// AddTick increments the runtime tick counter.
func (s *Statistics) AddTick() { s.ticks.Add(1) }

// AddDetected adds n detected objects.
func (s *Statistics) AddDetected(n int) { s.detected.Add(int64(n)) }

// AddTracked adds n tracked objects.
func (s *Statistics) AddTracked(n int) { s.tracked.Add(int64(n)) }

// AddLandmark increments the landmark counter. Called on first insertion
// only, never on merge.
func (s *Statistics) AddLandmark() { s.landmarks.Add(1) }

// Ticks returns the runtime tick count.
func (s *Statistics) Ticks() int { return int(s.ticks.Load()) }

// Detected returns the detected-object count.
func (s *Statistics) Detected() int { return int(s.detected.Load()) }

// Tracked returns the tracked-object count.
func (s *Statistics) Tracked() int { return int(s.tracked.Load()) }

// Landmarks returns the landmark count.
func (s *Statistics) Landmarks() int { return int(s.landmarks.Load()) }
