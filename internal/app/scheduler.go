package app

import "time"

const (
	// idleFrameInterval paces the loop when nothing animates: one frame per
	// second keeps the clock and cache-age display current at negligible cost.
	idleFrameInterval = time.Second

	// animationFrameInterval paces the loop while a spinner is active.
	animationFrameInterval = time.Second / 30
)

// Scheduler computes the frame pacing for the render loop. It is pure state:
// the tick command re-arms itself with whatever interval the current mode
// demands, so the loop runs slow while idle and fast while animating.
type Scheduler struct {
	Idle      time.Duration
	Animation time.Duration
}

// NewScheduler returns the default pacing.
func NewScheduler() Scheduler {
	return Scheduler{
		Idle:      idleFrameInterval,
		Animation: animationFrameInterval,
	}
}

// Interval returns the tick interval for a mode.
func (s Scheduler) Interval(m Mode) time.Duration {
	if m.Loading() {
		return s.Animation
	}
	return s.Idle
}
