// Live render surface: texture lifecycle, filtering and rasterization
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"photo-retouch/internal/core"
	"photo-retouch/internal/pipeline"
	"photo-retouch/internal/view"
)

// TextureSource decodes image buffers and bounds the preview texture size
type TextureSource interface {
	Decode(ctx context.Context, data []byte) (image.Image, error)
	PreviewTexture(img image.Image, maxDimension int) image.Image
}

// PostFunc runs fn on the UI thread
type PostFunc func(fn func())

// Params describe what a surface shows
type Params struct {
	ImageID   string
	Data      []byte
	Kind      view.SurfaceKind
	Width     float64
	Height    float64
	Settings  core.Settings
	Transform core.Transform
	Divider   float64
}

// Options are shared by every surface a manager creates
type Options struct {
	Logger           *logrus.Logger
	Source           TextureSource
	Post             PostFunc
	Pipeline         pipeline.Options
	Strategy         pipeline.Renderer
	PreviewMaxDim    int
	OnReady          func()
	BackgroundColor  color.NRGBA
	DividerLineColor color.NRGBA
}

// Surface renders one image in one view kind. It is created for a fixed image,
// kind and size and destroyed when any of them changes.
type Surface struct {
	id     string
	kind   view.SurfaceKind
	opts   Options
	slot   *Slot
	cancel context.CancelFunc

	mu        sync.Mutex
	alive     bool
	params    Params
	srcW      float64
	srcH      float64
	original  *image.NRGBA
	edited    *image.NRGBA
	filtered  core.Settings
	decodeErr error
}

// NewSurface claims the slot and starts decoding the image in the background
func NewSurface(slot *Slot, params Params, opts Options) (*Surface, error) {
	if opts.Strategy == nil {
		opts.Strategy = pipeline.Approximate{}
	}
	if opts.Post == nil {
		opts.Post = func(fn func()) { fn() }
	}

	s := &Surface{
		id:     params.ImageID,
		kind:   params.Kind,
		opts:   opts,
		slot:   slot,
		alive:  true,
		params: params,
	}
	if err := slot.acquire(s); err != nil {
		return nil, fmt.Errorf("create %s surface for %s: %w", params.Kind, params.ImageID, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.decode(ctx, params.Data)

	opts.Logger.WithFields(logrus.Fields{
		"image":  params.ImageID,
		"kind":   params.Kind.String(),
		"width":  params.Width,
		"height": params.Height,
	}).Debug("Render surface created")

	return s, nil
}

func (s *Surface) decode(ctx context.Context, data []byte) {
	img, err := s.opts.Source.Decode(ctx, data)

	var preview *image.NRGBA
	if err == nil {
		preview = pipeline.ToNRGBA(s.opts.Source.PreviewTexture(img, s.opts.PreviewMaxDim))
	}

	s.opts.Post(func() {
		s.mu.Lock()
		if !s.alive {
			s.mu.Unlock()
			s.opts.Logger.WithField("image", s.id).Debug("Discarding decode for destroyed surface")
			return
		}
		if err != nil {
			s.decodeErr = err
			s.mu.Unlock()
			s.opts.Logger.WithFields(logrus.Fields{
				"image": s.id,
				"error": err,
			}).Error("Failed to decode image")
			return
		}

		s.srcW = float64(img.Bounds().Dx())
		s.srcH = float64(img.Bounds().Dy())
		s.original = preview
		s.refilterLocked()
		s.mu.Unlock()

		if s.opts.OnReady != nil {
			s.opts.OnReady()
		}
	})
}

// refilterLocked rebuilds the edited texture. The grain radius is given in
// source pixels, so it shrinks with the preview texture.
func (s *Surface) refilterLocked() {
	t := s.opts.Pipeline.Compute(s.params.Settings)
	if s.srcW > 0 {
		t = t.ScaleBlur(float64(s.original.Bounds().Dx()) / s.srcW)
	}
	s.edited = s.opts.Strategy.Apply(s.original, t)
	s.filtered = s.params.Settings
}

// Params returns what the surface was created for plus the latest updates
func (s *Surface) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Alive reports whether the surface has not been destroyed
func (s *Surface) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// Ready reports whether the textures are decoded
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive && s.original != nil
}

// Err returns the decode failure, if any
func (s *Surface) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decodeErr
}

// SetSettings re-filters the edited texture when the settings differ from the
// ones it was built with
func (s *Surface) SetSettings(settings core.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params.Settings = settings
	if !s.alive || s.original == nil || settings == s.filtered {
		return
	}
	s.refilterLocked()
}

// SetTransform only changes the layout
func (s *Surface) SetTransform(t core.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Transform = t.Normalize()
}

// SetDivider only changes the layout
func (s *Surface) SetDivider(percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Divider = view.ClampDivider(percent)
}

// Layout returns the scene in surface coordinates
func (s *Surface) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layoutLocked(s.params.Width, s.params.Height, 1)
}

func (s *Surface) layoutLocked(w, h, density float64) Layout {
	if s.original == nil {
		return Layout{Kind: s.params.Kind, Width: w, Height: h, Divider: s.params.Divider}
	}
	t := s.params.Transform
	t.X *= density
	t.Y *= density
	return ComputeLayout(s.params.Kind, w, h, s.srcW*density, s.srcH*density, t, s.params.Divider)
}

// Rasterize draws the current frame at w x h pixels. A panic while drawing is
// logged and yields a blank frame.
func (s *Surface) Rasterize(w, h int) (out image.Image) {
	dst := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	defer func() {
		if r := recover(); r != nil {
			s.opts.Logger.WithFields(logrus.Fields{
				"image": s.id,
				"panic": r,
			}).Error("Recovered from raster panic")
			out = image.NewNRGBA(dst.Bounds())
		}
	}()

	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(s.opts.BackgroundColor), image.Point{}, xdraw.Src)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive || s.original == nil || w <= 0 || h <= 0 {
		return dst
	}

	density := 1.0
	if s.params.Width > 0 {
		density = float64(w) / s.params.Width
	}
	layout := s.layoutLocked(float64(w), float64(h), density)
	for _, sprite := range layout.Sprites {
		tex := s.original
		if sprite.Role == RoleEdited {
			tex = s.edited
		}
		drawSprite(dst, tex, sprite)
	}
	if layout.Kind == view.SurfaceSwipe {
		s.drawDivider(dst, layout, density)
	}
	return dst
}

func drawSprite(dst *image.NRGBA, tex *image.NRGBA, sprite Sprite) {
	if tex == nil {
		return
	}
	b := sprite.Bounds()
	dr := image.Rect(int(b.X), int(b.Y), int(b.X+b.Width), int(b.Y+b.Height))
	if dr.Empty() {
		return
	}

	target := dst
	if sprite.ClipX > 0 {
		clip := image.Rect(int(sprite.ClipX), 0, dst.Bounds().Max.X, dst.Bounds().Max.Y)
		sub, ok := dst.SubImage(clip).(*image.NRGBA)
		if !ok || sub.Bounds().Empty() {
			return
		}
		target = sub
	}
	xdraw.ApproxBiLinear.Scale(target, dr, tex, tex.Bounds(), xdraw.Over, nil)
}

func (s *Surface) drawDivider(dst *image.NRGBA, layout Layout, density float64) {
	c := s.opts.DividerLineColor
	x := int(layout.DividerX())
	line := image.Rect(x-1, 0, x+1, dst.Bounds().Dy())
	xdraw.Draw(dst, line.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, xdraw.Over)

	center := layout.HandleCenter()
	r := DividerHandleRadius * density
	for y := int(center.Y - r); y <= int(center.Y+r); y++ {
		for x := int(center.X - r); x <= int(center.X+r); x++ {
			dx, dy := float64(x)-center.X, float64(y)-center.Y
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(dst.Bounds()) {
				dst.SetNRGBA(x, y, c)
			}
		}
	}
}

// Destroy releases the textures and the slot. Calling it again is a no-op.
func (s *Surface) Destroy() {
	s.mu.Lock()
	if !s.alive {
		s.mu.Unlock()
		return
	}
	s.alive = false
	s.original = nil
	s.edited = nil
	s.mu.Unlock()

	s.cancel()
	s.slot.release(s)

	s.opts.Logger.WithFields(logrus.Fields{
		"image": s.id,
		"kind":  s.kind.String(),
	}).Debug("Render surface destroyed")
}
