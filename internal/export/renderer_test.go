package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-retouch/internal/core"
	"photo-retouch/internal/metrics"
	"photo-retouch/internal/pipeline"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 30), uint8(y * 40), 90, 255})
		}
	}
	return img
}

func TestRenderRefusesIdentitySettings(t *testing.T) {
	r := NewRenderer(quietLogger(), pipeline.DefaultOptions(), "")

	assert.False(t, CanRender(core.DefaultSettings()))
	_, err := r.Render(context.Background(), sample(), core.DefaultSettings())
	assert.True(t, errors.Is(err, ErrNoAdjustments))
}

func TestRenderMatchesExactStrategy(t *testing.T) {
	r := NewRenderer(quietLogger(), pipeline.DefaultOptions(), "")
	settings := core.Settings{Exposure: 25, Shadows: 40, Saturation: -30}

	out, err := r.RenderImage(context.Background(), sample(), settings)
	require.NoError(t, err)

	want := pipeline.Exact{}.Apply(sample(), pipeline.Compute(settings))
	assert.Equal(t, want.Pix, out.Pix)
}

func TestRenderEncodesPNG(t *testing.T) {
	r := NewRenderer(quietLogger(), pipeline.DefaultOptions(), "")
	settings := core.Settings{Temperature: 60, Grain: 20}

	data, err := r.Render(context.Background(), sample(), settings)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 6), decoded.Bounds().Size())
}

func TestRenderHonoursCancellation(t *testing.T) {
	r := NewRenderer(quietLogger(), pipeline.DefaultOptions(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, sample(), core.Settings{Exposure: 10})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExportNamesArtifact(t *testing.T) {
	r := NewRenderer(quietLogger(), pipeline.DefaultOptions(), "")
	rec := core.ImageRecord{ID: "img1", DisplayName: "holiday.jpeg"}

	artifact, err := r.Export(context.Background(), rec, sample(), core.Settings{Clarity: 15})
	require.NoError(t, err)
	assert.Equal(t, "edited_holiday.png", artifact.Name)
	assert.NotEmpty(t, artifact.Data)
}

func TestArtifactName(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":        "edited_photo.png",
		"dir/portrait.PNG": "edited_portrait.png",
		"archive.tar.gz":   "edited_archive.tar.png",
		"noext":            "edited_noext.png",
		"":                 "edited_image.png",
	}
	for in, want := range tests {
		assert.Equal(t, want, ArtifactName(DefaultPrefix, in), in)
	}
	assert.Equal(t, "retouched-a.png", ArtifactName("retouched-", "a.webp"))
}

func TestAgreement(t *testing.T) {
	r := NewRenderer(quietLogger(), pipeline.DefaultOptions(), "")

	// no gated stages, so the live preview matches the export closely
	scores, err := r.Agreement(context.Background(), sample(), core.Settings{Exposure: 20, Saturation: 10}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, scores)
	for _, score := range scores {
		if score.Key == "max_delta" {
			assert.LessOrEqual(t, score.Value, 2.0)
		}
	}
	assert.Contains(t, scoreKeys(scores), "max_delta")

	_, err = r.Agreement(context.Background(), sample(), core.DefaultSettings(), 1)
	assert.True(t, errors.Is(err, ErrNoAdjustments))
}

func scoreKeys(scores []metrics.Score) []string {
	keys := make([]string, 0, len(scores))
	for _, s := range scores {
		keys = append(keys, s.Key)
	}
	return keys
}
