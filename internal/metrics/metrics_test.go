package metrics

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func lookup(scores []Score, key string) (Score, bool) {
	for _, s := range scores {
		if s.Key == key {
			return s, true
		}
	}
	return Score{}, false
}

func TestIdenticalImages(t *testing.T) {
	a := filled(4, 3, color.NRGBA{10, 20, 30, 255})
	b := filled(4, 3, color.NRGBA{10, 20, 30, 255})

	scores := NewEvaluator().Evaluate(a, b)
	require.Len(t, scores, 3)

	psnr, ok := lookup(scores, "psnr")
	require.True(t, ok)
	assert.True(t, math.IsInf(psnr.Value, 1))
	assert.Equal(t, "PSNR", psnr.Name)

	for _, s := range scores {
		assert.Equal(t, 1.0, s.Closeness(), s.Key)
	}
	mse, _ := lookup(scores, "mse")
	assert.Zero(t, mse.Value)
	delta, _ := lookup(scores, "max_delta")
	assert.Zero(t, delta.Value)
}

func TestUniformOffset(t *testing.T) {
	a := filled(4, 4, color.NRGBA{100, 100, 100, 255})
	b := filled(4, 4, color.NRGBA{110, 100, 100, 255})

	mse, err := NewMSE().Calculate(a, b)
	require.NoError(t, err)
	// only the red channel differs by 10
	assert.InDelta(t, 100.0/3, mse, 1e-6)

	delta, err := NewMaxDelta().Calculate(a, b)
	require.NoError(t, err)
	assert.Equal(t, 10.0, delta)
}

func TestDimensionMismatch(t *testing.T) {
	_, err := NewPSNR().Calculate(filled(2, 2, color.NRGBA{}), filled(3, 2, color.NRGBA{}))
	assert.Error(t, err)

	_, err = NewEvaluator().Calculate("ssim", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, []string{"max_delta", "mse", "psnr"}, NewEvaluator().Names())
}

func TestEvaluateOrderAndMetadata(t *testing.T) {
	a := filled(4, 4, color.NRGBA{100, 100, 100, 255})
	b := filled(4, 4, color.NRGBA{151, 100, 100, 255})

	scores := NewEvaluator().Evaluate(a, b)
	require.Len(t, scores, 3)
	assert.Equal(t, "max_delta", scores[0].Key)
	assert.Equal(t, "mse", scores[1].Key)
	assert.Equal(t, "psnr", scores[2].Key)

	delta := scores[0]
	assert.Equal(t, "Max Delta", delta.Name)
	assert.NotEmpty(t, delta.Description)
	assert.False(t, delta.HigherBetter)
	assert.InDelta(t, 0.8, delta.Closeness(), 1e-9) // 51 of 255

	_, ok := lookup(scores, "ssim")
	assert.False(t, ok)
	assert.Empty(t, NewEvaluator().Evaluate(filled(2, 2, color.NRGBA{}), filled(3, 3, color.NRGBA{})))
}

func TestScoreCloseness(t *testing.T) {
	tests := []struct {
		name  string
		score Score
		want  float64
	}{
		{"higher better mid", Score{Value: 25, Min: 0, Max: 100, HigherBetter: true}, 0.25},
		{"higher better above range", Score{Value: math.Inf(1), Min: 0, Max: 100, HigherBetter: true}, 1},
		{"lower better", Score{Value: 0, Min: 0, Max: 255}, 1},
		{"empty range", Score{Value: 3, Min: 1, Max: 1}, 0},
		{"nan", Score{Value: math.NaN(), Min: 0, Max: 1, HigherBetter: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.score.Closeness(), 1e-9)
		})
	}
}
