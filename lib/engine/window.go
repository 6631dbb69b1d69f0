package engine

import (
	"time"

	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/voting"
)

// Extension records one deadline extension of a window.
type Extension struct {
	GrantedAt   time.Time `json:"granted_at"`
	NewDeadline time.Time `json:"new_deadline"`
	Reason      string    `json:"reason"`
}

// Window is the lifecycle state machine of one proposal. It starts open
// (PENDING) and moves exactly once into a terminal verdict. The window is
// not safe for concurrent use; RunningProposal serializes access.
type Window struct {
	openedAt     time.Time
	baseDeadline time.Time
	conf         voting.WindowConfig
	extensions   []Extension
	status       voting.Verdict
}

func NewWindow(openedAt time.Time, conf voting.WindowConfig) (w *Window, err error) {
	if err = conf.IsWellFormed(); err != nil {
		return
	}

	w = &Window{
		openedAt:     openedAt,
		baseDeadline: openedAt.Add(conf.Duration()),
		conf:         conf,
		status:       voting.PENDING,
	}

	return
}

func (w *Window) Status() voting.Verdict {
	return w.status
}

func (w *Window) IsOpen() bool {
	return !w.status.IsTerminal()
}

func (w *Window) OpenedAt() time.Time {
	return w.openedAt
}

// Deadline returns the current deadline including all granted extensions.
func (w *Window) Deadline() time.Time {
	if n := len(w.extensions); n > 0 {
		return w.extensions[n-1].NewDeadline
	}
	return w.baseDeadline
}

func (w *Window) Extensions() []Extension {
	ext := make([]Extension, len(w.extensions))
	copy(ext, w.extensions)
	return ext
}

func (w *Window) TotalExtension() time.Duration {
	return w.Deadline().Sub(w.baseDeadline)
}

// TimeLeft is the raw remaining duration; negative once the deadline has
// passed. The grace buffer is not applied here.
func (w *Window) TimeLeft(now time.Time) time.Duration {
	return w.Deadline().Sub(now)
}

// IsExpired reports whether the deadline has passed, after subtracting the
// grace buffer from now. A vote or evaluation arriving inside the grace
// buffer still sees an open window.
func (w *Window) IsExpired(now time.Time) bool {
	return now.Add(-w.conf.GraceBuffer).After(w.Deadline())
}

func (w *Window) canExtend() bool {
	p := w.conf.Extension
	if p.ExtensionLength <= 0 {
		return false
	}
	if p.MaxExtensions > 0 && len(w.extensions) >= p.MaxExtensions {
		return false
	}
	if p.MaxTotalExtension > 0 && w.TotalExtension()+p.ExtensionLength > p.MaxTotalExtension {
		return false
	}

	return true
}

// ShouldExtend reports whether the near-miss rule applies: the deadline is
// inside the trigger window, the tally is short of the bar by no more than
// the policy epsilon, and the extension quota is not exhausted.
func (w *Window) ShouldExtend(now time.Time, current, required float64) bool {
	if !w.IsOpen() || !w.canExtend() {
		return false
	}
	if w.TimeLeft(now) > w.conf.Extension.TriggerWindow {
		return false
	}

	short := required - current
	return short > 0 && short <= w.conf.Extension.NearMissEpsilon
}

// Extend pushes the deadline out by the policy extension length.
func (w *Window) Extend(now time.Time, reason string) (err error) {
	if !w.IsOpen() {
		err = errors.ErrorProposalNotOpen
		return
	}
	if !w.canExtend() {
		err = errors.ErrorExtensionLimitExceeded
		return
	}

	w.extensions = append(w.extensions, Extension{
		GrantedAt:   now,
		NewDeadline: w.Deadline().Add(w.conf.Extension.ExtensionLength),
		Reason:      reason,
	})

	return
}

// Transition moves the window into a terminal verdict. Terminal states are
// sticky; a second transition fails.
func (w *Window) Transition(to voting.Verdict) (err error) {
	if !to.IsTerminal() {
		err = errors.ErrorInvalidVote.Clone().SetData("error", "transition target must be terminal")
		return
	}
	if !w.IsOpen() {
		err = errors.ErrorProposalNotOpen
		return
	}

	w.status = to

	return
}
