package app

import "time"

// Frame creation repaints the whole workspace, and doing so while a new
// frame is still laying itself out produces visible flicker. Redraw is
// the explicit state machine that suppresses workspace repaints across
// that window and resumes them on a timer.
//
// Using an explicit state machine prevents invalid state combinations
// and makes state transitions clear and traceable.

// RedrawPhase is the repaint gate state.
type RedrawPhase int

const (
	// RedrawIdle means repaints pass through normally.
	RedrawIdle RedrawPhase = iota
	// RedrawSuppressed means repaints are withheld until the resume
	// timer fires.
	RedrawSuppressed
)

// String returns a human-readable name for the phase
func (p RedrawPhase) String() string {
	switch p {
	case RedrawIdle:
		return "Idle"
	case RedrawSuppressed:
		return "Suppressed"
	default:
		return "Unknown"
	}
}

// resumeDelay is how long a frame creation withholds repaints.
const resumeDelay = 100 * time.Millisecond

// Redraw tracks the repaint gate. Each suppression mints a fresh timer
// token; TimerFired only honors the token of the suppression it belongs
// to, so a timer surviving from an earlier cycle cannot end a later one.
type Redraw struct {
	phase RedrawPhase
	token int
}

// FrameCreated reports that a new comparison frame is being created.
// Repaints are suppressed when the workspace is maximized, or when
// there is no active frame yet (first frame layout). While already
// Suppressed the event is a no-op: the running timer is not restarted.
// Returns the timer token to resume with, and whether a suppression
// started.
func (r *Redraw) FrameCreated(maximized, hasActiveFrame bool) (int, bool) {
	if r.phase == RedrawSuppressed {
		return 0, false
	}
	if !maximized && hasActiveFrame {
		return 0, false
	}
	r.phase = RedrawSuppressed
	r.token++
	return r.token, true
}

// FrameActivated reports a frame focus change. During suppression the
// activation itself must not repaint; returns whether an immediate
// repaint is allowed.
func (r *Redraw) FrameActivated() bool {
	return r.phase == RedrawIdle
}

// TimerFired handles a resume timer. Only the token of the most recent
// suppression resumes; stale tokens are ignored. Returns whether
// repaints resumed (the caller owes one full repaint).
func (r *Redraw) TimerFired(token int) bool {
	if r.phase != RedrawSuppressed || token != r.token {
		return false
	}
	r.phase = RedrawIdle
	return true
}

// Suppressed reports whether repaints are currently withheld.
func (r *Redraw) Suppressed() bool {
	return r.phase == RedrawSuppressed
}

// Phase returns the current gate state.
func (r *Redraw) Phase() RedrawPhase {
	return r.phase
}
