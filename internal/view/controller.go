// View mode state machine for the workspace
package view

import (
	"math"
	"sync"
)

// Mode selects how many panes the workspace shows
type Mode int

const (
	ModeSingle Mode = iota
	ModeCompare
	ModeModified
)

func (m Mode) String() string {
	switch m {
	case ModeCompare:
		return "compare"
	case ModeModified:
		return "modified"
	default:
		return "single"
	}
}

// next is the cycle driven by the "two" control
func (m Mode) next() Mode {
	switch m {
	case ModeSingle:
		return ModeCompare
	case ModeCompare:
		return ModeModified
	default:
		return ModeSingle
	}
}

// SurfaceKind is the render surface a state requires
type SurfaceKind int

const (
	SurfaceSingle SurfaceKind = iota
	SurfaceCompare
	SurfaceModified
	SurfaceSwipe
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceCompare:
		return "compare"
	case SurfaceModified:
		return "modified"
	case SurfaceSwipe:
		return "swipe"
	default:
		return "single"
	}
}

// SideBySide reports whether the surface shows two panes next to each other
func (k SurfaceKind) SideBySide() bool {
	return k == SurfaceCompare || k == SurfaceModified
}

// DefaultDivider is the initial swipe divider position, in percent
const DefaultDivider = 50.0

// State is a snapshot of the controller
type State struct {
	Mode    Mode
	Trans   bool
	Divider float64
}

// Surface maps the state to the surface kind it requires
func (s State) Surface() SurfaceKind {
	if s.Trans {
		return SurfaceSwipe
	}
	switch s.Mode {
	case ModeCompare:
		return SurfaceCompare
	case ModeModified:
		return SurfaceModified
	default:
		return SurfaceSingle
	}
}

// Controller owns the view mode, the swipe toggle and the divider position.
// Swipe and side-by-side are mutually exclusive.
type Controller struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func NewController() *Controller {
	return &Controller{
		state: State{Mode: ModeSingle, Divider: DefaultDivider},
	}
}

// State returns the current snapshot
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Surface returns the surface kind for the current state
func (c *Controller) Surface() SurfaceKind {
	return c.State().Surface()
}

// OnChange registers a listener invoked after every state change
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// ToggleTwo advances Single -> Compare -> Modified -> Single. Entering a
// side-by-side mode turns swipe off.
func (c *Controller) ToggleTwo() State {
	return c.mutate(func(s State) State {
		s.Mode = s.Mode.next()
		if s.Mode != ModeSingle {
			s.Trans = false
		}
		return s
	})
}

// ToggleTrans flips swipe mode. Turning it on forces the single layout.
func (c *Controller) ToggleTrans() State {
	return c.mutate(func(s State) State {
		s.Trans = !s.Trans
		if s.Trans {
			s.Mode = ModeSingle
		}
		return s
	})
}

// SetDivider moves the swipe divider; values are clamped to 0..100
func (c *Controller) SetDivider(percent float64) State {
	return c.mutate(func(s State) State {
		s.Divider = ClampDivider(percent)
		return s
	})
}

func (c *Controller) mutate(fn func(State) State) State {
	c.mu.Lock()
	prev := c.state
	c.state = fn(c.state)
	next := c.state
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	if next != prev {
		for _, l := range listeners {
			l(next)
		}
	}
	return next
}

// ClampDivider keeps a divider percentage within 0..100
func ClampDivider(percent float64) float64 {
	if math.IsNaN(percent) {
		return DefaultDivider
	}
	return math.Max(0, math.Min(100, percent))
}
