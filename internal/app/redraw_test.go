package app

import "testing"

func TestFrameCreatedNormalWindowNoSuppression(t *testing.T) {
	var r Redraw
	if _, suppressed := r.FrameCreated(false, true); suppressed {
		t.Error("creating into a normal workspace with an active frame should not suppress")
	}
	if r.Suppressed() {
		t.Error("phase should stay Idle")
	}
}

func TestFrameCreatedWhileMaximizedSuppresses(t *testing.T) {
	var r Redraw
	token, suppressed := r.FrameCreated(true, true)
	if !suppressed {
		t.Fatal("maximized creation must suppress repaints")
	}
	if !r.Suppressed() {
		t.Error("phase should be Suppressed")
	}
	if !r.TimerFired(token) {
		t.Error("the matching timer should resume")
	}
	if r.Suppressed() {
		t.Error("phase should be Idle after resume")
	}
}

func TestFirstFrameSuppressesEvenUnmaximized(t *testing.T) {
	var r Redraw
	if _, suppressed := r.FrameCreated(false, false); !suppressed {
		t.Error("the first frame's layout should suppress repaints")
	}
}

func TestFrameCreatedWhileSuppressedIsNoop(t *testing.T) {
	var r Redraw
	first, _ := r.FrameCreated(true, true)

	if token, suppressed := r.FrameCreated(true, true); suppressed || token != 0 {
		t.Error("a create while already Suppressed must not mint a new token")
	}
	if !r.TimerFired(first) {
		t.Error("the running suppression's timer must still resume")
	}
	if r.Suppressed() {
		t.Error("phase should be Idle after resume")
	}
}

func TestStaleTimerTokenIsIgnored(t *testing.T) {
	var r Redraw
	current, _ := r.FrameCreated(true, true)

	if r.TimerFired(current + 1) {
		t.Error("a token from another cycle must not resume")
	}
	if !r.Suppressed() {
		t.Error("still suppressed until the matching timer fires")
	}
	if !r.TimerFired(current) {
		t.Error("the matching token should resume")
	}
}

func TestTimerFiredWhenIdleIsIgnored(t *testing.T) {
	var r Redraw
	if r.TimerFired(1) {
		t.Error("a timer with no pending suppression must be a no-op")
	}
}

func TestActivationDuringSuppressionDoesNotRepaint(t *testing.T) {
	var r Redraw
	if !r.FrameActivated() {
		t.Error("activation while idle repaints normally")
	}

	token, _ := r.FrameCreated(true, true)
	if r.FrameActivated() {
		t.Error("activation during suppression must not repaint")
	}

	r.TimerFired(token)
	if !r.FrameActivated() {
		t.Error("activation after resume repaints again")
	}
}

func TestPhaseString(t *testing.T) {
	var r Redraw
	if r.Phase().String() != "Idle" {
		t.Errorf("Phase = %s, want Idle", r.Phase())
	}
	r.FrameCreated(true, true)
	if r.Phase().String() != "Suppressed" {
		t.Errorf("Phase = %s, want Suppressed", r.Phase())
	}
}
