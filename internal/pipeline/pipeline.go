// Canonical mapping from adjustment settings to a color transform
package pipeline

import (
	"fmt"
	"math"

	"photo-retouch/internal/core"
)

const (
	midGray = 128.0

	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140

	// DefaultGrainBlurScale converts grain (0..100) into a blur radius in pixels
	DefaultGrainBlurScale = 0.05

	grainContrastScale = 0.005
)

// StageKind selects the per-pixel operation of a stage
type StageKind int

const (
	StageBrightness StageKind = iota
	StageContrast
	StageSaturation
	StageShift
)

func (k StageKind) String() string {
	switch k {
	case StageBrightness:
		return "brightness"
	case StageContrast:
		return "contrast"
	case StageSaturation:
		return "saturation"
	case StageShift:
		return "shift"
	}
	return fmt.Sprintf("stage(%d)", int(k))
}

// GateOp restricts a stage to pixels on one side of a brightness threshold
type GateOp int

const (
	GateNone GateOp = iota
	GateAbove
	GateBelow
)

// Gate is honoured by the exact strategy only
type Gate struct {
	Op        GateOp
	Threshold float64
}

// Pass reports whether a pixel of the given brightness is affected
func (g Gate) Pass(brightness float64) bool {
	switch g.Op {
	case GateAbove:
		return brightness > g.Threshold
	case GateBelow:
		return brightness < g.Threshold
	}
	return true
}

// Stage is one step of the canonical pipeline
type Stage struct {
	Field  core.Field
	Kind   StageKind
	Factor float64    // brightness, contrast and saturation
	Shift  [3]float64 // red, green, blue offsets for StageShift
	Gate   Gate
}

// Matrix returns the color matrix equivalent of the stage, gate ignored
func (s Stage) Matrix() ColorMatrix {
	switch s.Kind {
	case StageBrightness:
		return BrightnessMatrix(s.Factor)
	case StageContrast:
		return ContrastMatrix(s.Factor)
	case StageSaturation:
		return SaturationMatrix(s.Factor)
	case StageShift:
		return ShiftMatrix(s.Shift[0], s.Shift[1], s.Shift[2])
	}
	return IdentityMatrix()
}

// ColorTransform is the renderer-agnostic result of the pipeline
type ColorTransform struct {
	Stages []Stage
	// Matrix is every stage folded into one matrix, in stage order
	Matrix     ColorMatrix
	BlurRadius float64
	// ExportContrast is the grain contrast boost applied by export only;
	// 1 means none
	ExportContrast float64
}

// IsIdentity reports whether the transform leaves an image unchanged
func (t ColorTransform) IsIdentity() bool {
	return len(t.Stages) == 0 && t.BlurRadius == 0 && t.ExportContrast == 1
}

// ScaleBlur returns t with the blur radius converted to an image that is
// ratio times the size of the source, e.g. a downscaled preview texture
func (t ColorTransform) ScaleBlur(ratio float64) ColorTransform {
	if ratio > 0 && !math.IsInf(ratio, 0) {
		t.BlurRadius *= ratio
	}
	return t
}

// Options tune the parts of the pipeline that are not fixed by the formulas
type Options struct {
	GrainBlurScale float64
}

// DefaultOptions returns the canonical constants
func DefaultOptions() Options {
	return Options{GrainBlurScale: DefaultGrainBlurScale}
}

// Compute maps settings to a transform with the canonical constants
func Compute(s core.Settings) ColorTransform {
	return DefaultOptions().Compute(s)
}

// Compute maps settings to a color transform. It is pure and total: settings
// outside their domain are clamped first, and zero fields add no stage.
func (o Options) Compute(s core.Settings) ColorTransform {
	s = s.Clamp()

	var stages []Stage
	add := func(f core.Field, st Stage) {
		if s.Get(f) == 0 {
			return
		}
		st.Field = f
		stages = append(stages, st)
	}

	add(core.FieldExposure, Stage{Kind: StageBrightness, Factor: 1 + s.Exposure/100})
	add(core.FieldHighlights, Stage{Kind: StageContrast, Factor: 1 - s.Highlights*0.003,
		Gate: Gate{Op: GateAbove, Threshold: 128}})
	add(core.FieldShadows, Stage{Kind: StageBrightness, Factor: 1 + s.Shadows/200,
		Gate: Gate{Op: GateBelow, Threshold: 128}})
	add(core.FieldWhites, Stage{Kind: StageBrightness, Factor: 1 + s.Whites/125,
		Gate: Gate{Op: GateAbove, Threshold: 200}})
	add(core.FieldBlacks, Stage{Kind: StageContrast, Factor: 1 + s.Blacks/100,
		Gate: Gate{Op: GateBelow, Threshold: 55}})
	add(core.FieldSaturation, Stage{Kind: StageSaturation, Factor: 1 + s.Saturation/100})

	temp := s.Temperature / 100 * 50
	add(core.FieldTemperature, Stage{Kind: StageShift, Shift: [3]float64{temp, 0, -temp}})

	tint := s.Tint / 100
	add(core.FieldTint, Stage{Kind: StageShift, Shift: [3]float64{tint * 30, -tint * 40, tint * 30}})

	add(core.FieldTexture, Stage{Kind: StageContrast, Factor: 1 + s.Texture/100})
	add(core.FieldClarity, Stage{Kind: StageContrast, Factor: 1 + s.Clarity/100})

	matrix := IdentityMatrix()
	for _, st := range stages {
		matrix = matrix.Then(st.Matrix())
	}

	scale := o.GrainBlurScale
	if scale <= 0 {
		scale = DefaultGrainBlurScale
	}

	t := ColorTransform{
		Stages:         stages,
		Matrix:         matrix,
		ExportContrast: 1,
	}
	if s.Grain > 0 {
		t.BlurRadius = s.Grain * scale
		t.ExportContrast = 1 + s.Grain*grainContrastScale
	}
	return t
}

// Luma is the gray value used for saturation and brightness gates
func Luma(r, g, b float64) float64 {
	return lumaR*r + lumaG*g + lumaB*b
}

func clampChannel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
