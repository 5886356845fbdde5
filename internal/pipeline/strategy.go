package pipeline

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	xdraw "golang.org/x/image/draw"
)

// Renderer applies a ColorTransform to an image. Two strategies exist: the
// approximate one drives the live preview, the exact one drives export.
type Renderer interface {
	Name() string
	Apply(src image.Image, t ColorTransform) *image.NRGBA
}

// Approximate applies the folded color matrix to every pixel regardless of
// brightness gates, clamps once, then blurs by the grain radius. This is the
// interactive path; its gate-free behavior is the documented divergence from
// Exact.
type Approximate struct{}

func (Approximate) Name() string { return "approximate" }

func (Approximate) Apply(src image.Image, t ColorTransform) *image.NRGBA {
	out := ToNRGBA(src)
	if !t.Matrix.IsIdentity() {
		m := t.Matrix
		forEachPixel(out, func(p []uint8) {
			r, g, b, a := m.Apply(float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3]))
			p[0], p[1], p[2], p[3] = round8(r), round8(g), round8(b), round8(a)
		})
	}
	if t.BlurRadius > 0 {
		blurred := ToNRGBA(blur.Gaussian(out, t.BlurRadius))
		// grain softens color only; alpha stays the source's
		for i := 3; i < len(blurred.Pix); i += 4 {
			blurred.Pix[i] = out.Pix[i]
		}
		out = blurred
	}
	return out
}

// Exact applies the stages one by one, honouring brightness gates and
// clamping every channel after every stage. It performs no blur; export adds
// the grain post-process on top.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (Exact) Apply(src image.Image, t ColorTransform) *image.NRGBA {
	out := ToNRGBA(src)
	if len(t.Stages) == 0 {
		return out
	}
	stages := t.Stages
	forEachPixel(out, func(p []uint8) {
		r, g, b := float64(p[0]), float64(p[1]), float64(p[2])
		for _, st := range stages {
			r, g, b = st.applyExact(r, g, b)
		}
		p[0], p[1], p[2] = round8(r), round8(g), round8(b)
	})
	return out
}

// ApplyContrast runs a single ungated contrast stage over img in place
func ApplyContrast(img *image.NRGBA, factor float64) {
	if factor == 1 {
		return
	}
	st := Stage{Kind: StageContrast, Factor: factor}
	forEachPixel(img, func(p []uint8) {
		r, g, b := st.applyExact(float64(p[0]), float64(p[1]), float64(p[2]))
		p[0], p[1], p[2] = round8(r), round8(g), round8(b)
	})
}

func (s Stage) applyExact(r, g, b float64) (float64, float64, float64) {
	if s.Gate.Op != GateNone && !s.Gate.Pass(Luma(r, g, b)) {
		return r, g, b
	}

	switch s.Kind {
	case StageBrightness:
		r, g, b = r*s.Factor, g*s.Factor, b*s.Factor
	case StageContrast:
		r = (r-midGray)*s.Factor + midGray
		g = (g-midGray)*s.Factor + midGray
		b = (b-midGray)*s.Factor + midGray
	case StageSaturation:
		gray := Luma(r, g, b)
		r = gray + (r-gray)*s.Factor
		g = gray + (g-gray)*s.Factor
		b = gray + (b-gray)*s.Factor
	case StageShift:
		r, g, b = r+s.Shift[0], g+s.Shift[1], b+s.Shift[2]
	}
	return clampChannel(r), clampChannel(g), clampChannel(b)
}

// ToNRGBA returns a straight-alpha copy of src with bounds starting at 0,0
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

func forEachPixel(img *image.NRGBA, fn func(p []uint8)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+4 <= len(row); i += 4 {
			fn(row[i : i+4 : i+4])
		}
	}
}

func round8(v float64) uint8 {
	return uint8(math.Round(clampChannel(v)))
}
