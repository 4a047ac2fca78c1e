package app

import (
	"testing"
	"time"
)

func TestSchedulerIntervals(t *testing.T) {
	s := NewScheduler()

	if got := s.Interval(ModeDashboard); got != time.Second {
		t.Errorf("idle interval = %v, want 1s", got)
	}
	if got := s.Interval(ModeLoadingRefresh); got != time.Second/30 {
		t.Errorf("animation interval = %v, want ~33ms", got)
	}
	if got := s.Interval(ModeLoadingCache); got != time.Second/30 {
		t.Errorf("animation interval = %v, want ~33ms", got)
	}

	// Non-loading modals still idle; only spinners need fast frames.
	for _, m := range []Mode{ModeCommandMenu, ModeShowError, ModeShowHelp, ModeConfirmRefresh} {
		if got := s.Interval(m); got != s.Idle {
			t.Errorf("Interval(%v) = %v, want idle %v", m, got, s.Idle)
		}
	}
}
