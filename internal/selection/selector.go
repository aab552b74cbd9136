package selection

import (
	"log/slog"

	"rscapture/internal/logging"
)

// State identifies where the selector is in its gesture lifecycle.
type State int

const (
	StateInactive State = iota
	StateArmed
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Surface is the presentation collaborator behind the selector. Activate
// takes exclusive pointer capture and switches to a crosshair cursor;
// Deactivate releases both. DrawCandidate redraws the dimmed overlay with
// the candidate rectangle cut out and its WxH label above it.
type Surface interface {
	Activate()
	Deactivate()
	DrawCandidate(rect Rect, label string)
}

// NopSurface satisfies Surface without rendering anything. Useful for tests
// and for driving the selector from pre-supplied coordinates.
type NopSurface struct{}

func (NopSurface) Activate()                  {}
func (NopSurface) Deactivate()                {}
func (NopSurface) DrawCandidate(Rect, string) {}

// Selector is the drag-selection state machine. It moves through
// Inactive -> Armed -> Dragging -> Inactive and emits at most one selection
// per gesture: the normalized bounding box of the press and release points,
// only when that box has positive area.
//
// The selector is driven from a single input thread; it performs no
// locking of its own.
type Selector struct {
	state     State
	anchor    Point
	candidate Rect
	surface   Surface
	onSelect  func(Rect)
	logger    *slog.Logger
}

// New constructs a selector. onSelect receives the final normalized
// rectangle; a nil surface falls back to NopSurface.
func New(surface Surface, onSelect func(Rect), logger *slog.Logger) *Selector {
	if surface == nil {
		surface = NopSurface{}
	}
	return &Selector{
		state:    StateInactive,
		surface:  surface,
		onSelect: onSelect,
		logger:   logging.WithComponent(logger, "selector"),
	}
}

// State returns the current gesture state.
func (s *Selector) State() State {
	return s.state
}

// Arm activates the capture surface and prepares for a fresh gesture. Any
// state left over from a previous gesture is cleared so stale rectangles
// cannot leak into the new one. Arming while a gesture is in flight resets
// it without emitting.
func (s *Selector) Arm() {
	if s.state != StateInactive {
		s.finish()
	}
	s.anchor = Point{}
	s.candidate = Rect{}
	s.state = StateArmed
	s.surface.Activate()
	s.logger.Debug("selector armed")
}

// PointerDown begins the drag, recording the press point as the anchor.
// Ignored unless the selector is armed.
func (s *Selector) PointerDown(p Point) {
	if s.state != StateArmed {
		return
	}
	s.anchor = p
	s.candidate = Bounds(p, p)
	s.state = StateDragging
	s.surface.DrawCandidate(s.candidate, s.candidate.Label())
}

// PointerMove recomputes the candidate rectangle as the normalized bounding
// box of the anchor and the current pointer position. Ignored outside a drag.
func (s *Selector) PointerMove(p Point) {
	if s.state != StateDragging {
		return
	}
	s.candidate = Bounds(s.anchor, p)
	s.surface.DrawCandidate(s.candidate, s.candidate.Label())
}

// PointerUp completes the gesture. A candidate with positive width and
// height is emitted exactly once; a zero-area click emits nothing. The
// surface is always deactivated.
func (s *Selector) PointerUp(p Point) {
	if s.state != StateDragging {
		if s.state == StateArmed {
			s.finish()
		}
		return
	}
	final := Bounds(s.anchor, p)
	s.finish()
	if final.Empty() {
		s.logger.Debug("selection discarded", logging.String("reason", "zero area"))
		return
	}
	s.logger.Info("region selected", logging.String("region", final.String()))
	if s.onSelect != nil {
		s.onSelect(final)
	}
}

// Cancel abandons the gesture without emitting, releasing the surface.
func (s *Selector) Cancel() {
	if s.state == StateInactive {
		return
	}
	s.finish()
	s.logger.Debug("selection cancelled")
}

func (s *Selector) finish() {
	s.state = StateInactive
	s.candidate = Rect{}
	s.surface.Deactivate()
}
