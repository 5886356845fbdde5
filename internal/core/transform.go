package core

import "math"

const (
	MinScale = 0.1
	MaxScale = 5.0

	zoomOutFactor = 0.9
	zoomInFactor  = 1.1
)

// Transform is the pan offset (pixels from the surface centre) and zoom
// factor applied to a rendered image
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// DefaultTransform returns the centred, unscaled transform
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// ClampScale forces a zoom factor into [MinScale, MaxScale]
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, scale))
}

// Normalize returns t with its scale clamped
func (t Transform) Normalize() Transform {
	t.Scale = ClampScale(t.Scale)
	return t
}

// WithOffset returns t moved to the given pan offset
func (t Transform) WithOffset(x, y float64) Transform {
	t.X, t.Y = x, y
	return t
}

// Zoom applies one wheel step. A positive deltaY zooms out, anything else
// zooms in. The pan offset is left alone, so zoom stays anchored at the
// surface centre.
func (t Transform) Zoom(deltaY float64) Transform {
	factor := zoomInFactor
	if deltaY > 0 {
		factor = zoomOutFactor
	}
	t.Scale = ClampScale(t.Scale * factor)
	return t
}

// ZoomPercentage is the scale shown to the user
func (t Transform) ZoomPercentage() float64 {
	return t.Scale * 100
}
