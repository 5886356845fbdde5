// Pointer routing for the workspace: hit testing, pan, divider drag and zoom
package interaction

import (
	"sync"

	"photo-retouch/internal/core"
	"photo-retouch/internal/render"
	"photo-retouch/internal/view"
)

// Target is what a pointer position lands on
type Target int

const (
	TargetNone Target = iota
	TargetImage
	TargetDivider
	TargetDividerHandle
)

func (t Target) String() string {
	switch t {
	case TargetImage:
		return "image"
	case TargetDivider:
		return "divider"
	case TargetDividerHandle:
		return "divider-handle"
	default:
		return "none"
	}
}

// Action is the gesture a press starts
type Action int

const (
	ActionNone Action = iota
	ActionPanStart
	ActionDividerDragStart
)

func (a Action) String() string {
	switch a {
	case ActionPanStart:
		return "pan"
	case ActionDividerDragStart:
		return "divider-drag"
	default:
		return "none"
	}
}

// HitTest maps a position to a target. Divider targets only exist on a swipe
// surface and win over the image underneath. The whole surface pans the
// image, not just the sprite bounds.
func HitTest(p render.Point, l render.Layout) Target {
	if !l.HasImage() {
		return TargetNone
	}
	bounds := render.Rect{Width: l.Width, Height: l.Height}
	if !bounds.Contains(p) {
		return TargetNone
	}

	if l.Kind == view.SurfaceSwipe {
		c := l.HandleCenter()
		dx, dy := p.X-c.X, p.Y-c.Y
		if dx*dx+dy*dy <= render.DividerHandleRadius*render.DividerHandleRadius {
			return TargetDividerHandle
		}
		if d := p.X - l.DividerX(); d >= -render.DividerHitSlop && d <= render.DividerHitSlop {
			return TargetDivider
		}
	}
	return TargetImage
}

// Classify decides which gesture a press on target starts in the given view
// state
func Classify(target Target, state view.State) Action {
	switch target {
	case TargetImage:
		return ActionPanStart
	case TargetDivider, TargetDividerHandle:
		if state.Surface() == view.SurfaceSwipe {
			return ActionDividerDragStart
		}
	}
	return ActionNone
}

// Zoom scales around the surface centre; the pan offset is kept
func Zoom(t core.Transform, deltaY float64) core.Transform {
	return t.Zoom(deltaY)
}

// Drag is an in-progress gesture
type Drag struct {
	action Action
	start  render.Point
	width  float64
}

// BeginDrag records the anchor of a gesture. For a pan the anchor is the
// pointer minus the current offset so that moves keep the grab point fixed.
func BeginDrag(action Action, p render.Point, t core.Transform, l render.Layout) *Drag {
	d := &Drag{action: action, width: l.Width}
	if action == ActionPanStart {
		d.start = render.Point{X: p.X - t.X, Y: p.Y - t.Y}
	}
	return d
}

func (d *Drag) Action() Action {
	return d.action
}

// Pan returns the transform for the pointer position; scale is untouched
func (d *Drag) Pan(p render.Point, t core.Transform) core.Transform {
	return t.WithOffset(p.X-d.start.X, p.Y-d.start.Y)
}

// Divider returns the divider percentage for the pointer position
func (d *Drag) Divider(p render.Point) float64 {
	if d.width <= 0 {
		return view.DefaultDivider
	}
	return view.ClampDivider(p.X / d.width * 100)
}

// Handler receives the effects of routed gestures
type Handler interface {
	ActiveTransform() core.Transform
	SetTransform(t core.Transform)
	SetDivider(percent float64)
	Zoom(deltaY float64)
}

// Router turns raw pointer events into pan, divider and zoom updates
type Router struct {
	handler Handler

	mu   sync.Mutex
	drag *Drag
}

func NewRouter(handler Handler) *Router {
	return &Router{handler: handler}
}

// Press starts a gesture if the position lands on something interactive
func (r *Router) Press(p render.Point, l render.Layout, state view.State) Action {
	action := Classify(HitTest(p, l), state)

	r.mu.Lock()
	defer r.mu.Unlock()
	if action == ActionNone {
		r.drag = nil
		return action
	}
	r.drag = BeginDrag(action, p, r.handler.ActiveTransform(), l)
	return action
}

// Move updates the gesture in progress. It reports false when no gesture is
// active.
func (r *Router) Move(p render.Point) bool {
	r.mu.Lock()
	drag := r.drag
	r.mu.Unlock()
	if drag == nil {
		return false
	}

	switch drag.Action() {
	case ActionPanStart:
		r.handler.SetTransform(drag.Pan(p, r.handler.ActiveTransform()))
	case ActionDividerDragStart:
		r.handler.SetDivider(drag.Divider(p))
	}
	return true
}

// Release ends the gesture in progress
func (r *Router) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drag = nil
}

// Dragging reports whether a gesture is active
func (r *Router) Dragging() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drag != nil
}

// Scroll zooms the active image when the wheel turns over it
func (r *Router) Scroll(p render.Point, l render.Layout, deltaY float64) bool {
	if HitTest(p, l) == TargetNone {
		return false
	}
	r.handler.Zoom(deltaY)
	return true
}
