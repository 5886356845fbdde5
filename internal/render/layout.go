// Scene geometry for the workspace surfaces
package render

import (
	"math"

	"photo-retouch/internal/core"
	"photo-retouch/internal/view"
)

const (
	// DividerHandleRadius is the radius of the swipe handle drawn at mid height
	DividerHandleRadius = 16.0
	// DividerHitSlop is the half width of the grabbable band around the divider
	DividerHitSlop = 6.0
)

// Point is a position in surface coordinates
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in surface coordinates
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Role tells which rendition a sprite shows
type Role int

const (
	RoleOriginal Role = iota
	RoleEdited
)

func (r Role) String() string {
	if r == RoleEdited {
		return "edited"
	}
	return "original"
}

// Sprite is one placed texture. ClipX > 0 hides everything left of it.
type Sprite struct {
	Role   Role
	Center Point
	Scale  float64
	Width  float64
	Height float64
	ClipX  float64
}

// Bounds returns the on-screen rectangle covered by the sprite
func (s Sprite) Bounds() Rect {
	w := s.Width * s.Scale
	h := s.Height * s.Scale
	return Rect{X: s.Center.X - w/2, Y: s.Center.Y - h/2, Width: w, Height: h}
}

// Layout is the resolved scene for one frame
type Layout struct {
	Kind    view.SurfaceKind
	Width   float64
	Height  float64
	Divider float64
	Sprites []Sprite
}

// HasImage reports whether anything is placed on the surface
func (l Layout) HasImage() bool {
	return len(l.Sprites) > 0
}

// DividerX is the x position of the swipe divider
func (l Layout) DividerX() float64 {
	return l.Width * view.ClampDivider(l.Divider) / 100
}

// HandleCenter is the centre of the swipe handle
func (l Layout) HandleCenter() Point {
	return Point{X: l.DividerX(), Y: l.Height / 2}
}

// FitScale is the base scale that fits a texture into the given box without
// ever enlarging it
func FitScale(boxW, boxH, texW, texH float64) float64 {
	if texW <= 0 || texH <= 0 {
		return 1
	}
	return math.Min(math.Min(boxW/texW, boxH/texH), 1)
}

// ComputeLayout places the sprites of a surface kind inside a w x h viewport.
// texW/texH are the source image dimensions.
func ComputeLayout(kind view.SurfaceKind, w, h, texW, texH float64, t core.Transform, divider float64) Layout {
	l := Layout{Kind: kind, Width: w, Height: h, Divider: view.ClampDivider(divider)}
	if w <= 0 || h <= 0 || texW <= 0 || texH <= 0 {
		return l
	}
	t = t.Normalize()

	sprite := func(role Role, cx, scale float64) Sprite {
		return Sprite{
			Role:   role,
			Center: Point{X: cx + t.X, Y: h/2 + t.Y},
			Scale:  scale * t.Scale,
			Width:  texW,
			Height: texH,
		}
	}

	switch kind {
	case view.SurfaceCompare, view.SurfaceModified:
		base := FitScale(w/2, h, texW, texH)
		left, right := RoleOriginal, RoleEdited
		if kind == view.SurfaceModified {
			left, right = RoleEdited, RoleOriginal
		}
		l.Sprites = []Sprite{sprite(left, w/4, base), sprite(right, 3*w/4, base)}
	case view.SurfaceSwipe:
		base := FitScale(w, h, texW, texH)
		edited := sprite(RoleEdited, w/2, base)
		edited.ClipX = l.DividerX()
		l.Sprites = []Sprite{sprite(RoleOriginal, w/2, base), edited}
	default:
		l.Sprites = []Sprite{sprite(RoleEdited, w/2, FitScale(w, h, texW, texH))}
	}
	return l
}
