// Exact offline rendering of an edited image into a PNG artifact
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"photo-retouch/internal/core"
	"photo-retouch/internal/metrics"
	"photo-retouch/internal/pipeline"
)

// DefaultPrefix is prepended to the source name of every artifact
const DefaultPrefix = "edited_"

// ErrNoAdjustments is returned when asked to export the identity record
var ErrNoAdjustments = errors.New("no adjustments to export")

// Artifact is one encoded export ready to be written out
type Artifact struct {
	Name string
	Data []byte
}

// Renderer reproduces the pipeline pixel by pixel with the exact strategy,
// adds the grain post-process and encodes the result as PNG
type Renderer struct {
	logger   *logrus.Logger
	options  pipeline.Options
	strategy pipeline.Renderer
	prefix   string
}

// NewRenderer creates an export renderer. An empty prefix selects
// DefaultPrefix.
func NewRenderer(logger *logrus.Logger, options pipeline.Options, prefix string) *Renderer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Renderer{
		logger:   logger,
		options:  options,
		strategy: pipeline.Exact{},
		prefix:   prefix,
	}
}

// CanRender reports whether settings hold at least one adjustment
func CanRender(settings core.Settings) bool {
	return !settings.IsIdentity()
}

// RenderImage returns the exact edited pixels without encoding them
func (r *Renderer) RenderImage(ctx context.Context, src image.Image, settings core.Settings) (*image.NRGBA, error) {
	if !CanRender(settings) {
		return nil, ErrNoAdjustments
	}
	return r.renderTransform(ctx, src, r.options.Compute(settings))
}

func (r *Renderer) renderTransform(ctx context.Context, src image.Image, t pipeline.ColorTransform) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("export: no source image")
	}

	out := r.strategy.Apply(src, t)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if t.BlurRadius > 0 {
		blurred, err := gaussianBlur(out, t.BlurRadius)
		if err != nil {
			return nil, fmt.Errorf("grain blur: %w", err)
		}
		out = blurred
		pipeline.ApplyContrast(out, t.ExportContrast)
	}
	return out, ctx.Err()
}

// Render produces the encoded PNG for src under settings
func (r *Renderer) Render(ctx context.Context, src image.Image, settings core.Settings) ([]byte, error) {
	start := time.Now()

	out, err := r.RenderImage(ctx, src, settings)
	if err != nil {
		return nil, err
	}

	if r.logger.IsLevelEnabled(logrus.DebugLevel) {
		r.logAgreement(src, out, settings)
	}

	data, err := encodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"width":    out.Bounds().Dx(),
		"height":   out.Bounds().Dy(),
		"bytes":    len(data),
		"duration": time.Since(start),
	}).Info("Export rendered")
	return data, nil
}

// Export renders rec under settings and names the artifact after it
func (r *Renderer) Export(ctx context.Context, rec core.ImageRecord, src image.Image, settings core.Settings) (*Artifact, error) {
	data, err := r.Render(ctx, src, settings)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name: ArtifactName(r.prefix, rec.DisplayName),
		Data: data,
	}, nil
}

// Agreement scores how far the live preview strategy drifts from the
// exported pixels. src may be a downscaled copy of the source; scale is its
// size relative to the source so both paths blur by the same source radius.
func (r *Renderer) Agreement(ctx context.Context, src image.Image, settings core.Settings, scale float64) ([]metrics.Score, error) {
	if !CanRender(settings) {
		return nil, ErrNoAdjustments
	}
	t := r.options.Compute(settings).ScaleBlur(scale)
	exact, err := r.renderTransform(ctx, src, t)
	if err != nil {
		return nil, err
	}
	return r.agreement(src, exact, t), nil
}

func (r *Renderer) agreement(src image.Image, exact *image.NRGBA, t pipeline.ColorTransform) []metrics.Score {
	live := pipeline.Approximate{}.Apply(src, t)
	return metrics.NewEvaluator().Evaluate(live, exact)
}

func (r *Renderer) logAgreement(src image.Image, exact *image.NRGBA, settings core.Settings) {
	fields := logrus.Fields{}
	for _, score := range r.agreement(src, exact, r.options.Compute(settings)) {
		fields[score.Key] = score.Value
	}
	r.logger.WithFields(fields).Debug("Preview/export agreement")
}

// ArtifactName derives the download name from the source file name
func ArtifactName(prefix, displayName string) string {
	base := filepath.Base(displayName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "image"
	}
	return prefix + base + ".png"
}

func gaussianBlur(img *image.NRGBA, radius float64) (*image.NRGBA, error) {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	// kernel size 0 lets OpenCV derive it from sigma
	gocv.GaussianBlur(src, &dst, image.Pt(0, 0), radius, radius, gocv.BorderReflect101)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("mat to image: %w", err)
	}
	return pipeline.ToNRGBA(out), nil
}

func encodePNG(img *image.NRGBA) ([]byte, error) {
	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
