package session

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
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-retouch/internal/config"
	"photo-retouch/internal/core"
	"photo-retouch/internal/export"
	"photo-retouch/internal/view"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.Default()
	cfg.Progress.Steps = 3
	cfg.Progress.IntervalMS = 1
	cfg.Render.ThumbnailSize = 8
	return New(logger, cfg)
}

func pngUpload(t *testing.T, name string, w, h int) core.Upload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 10), 90, uint8(y * 10), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return core.Upload{Name: name, Data: buf.Bytes()}
}

func TestUploadSelectsFirstAndSkipsNonImages(t *testing.T) {
	s := newSession(t)
	var events []EventType
	for _, e := range []EventType{EventImagesChanged, EventActiveChanged} {
		e := e
		s.On(e, func(interface{}) { events = append(events, e) })
	}

	added := s.Upload([]core.Upload{
		pngUpload(t, "a.png", 4, 4),
		{Name: "notes.txt", Data: []byte("hello, this is text")},
		pngUpload(t, "b.png", 4, 4),
	})
	require.Len(t, added, 2)
	assert.Equal(t, "img1", added[0].ID)
	assert.Equal(t, "png", added[0].Format)
	assert.Equal(t, "img1", s.ActiveID())
	assert.Equal(t, []EventType{EventImagesChanged, EventActiveChanged}, events)

	// later uploads keep the selection
	more := s.Upload([]core.Upload{pngUpload(t, "c.png", 4, 4)})
	require.Len(t, more, 1)
	assert.Equal(t, "img1", s.ActiveID())
	assert.Len(t, s.Records(), 3)
}

func TestPerImageIsolation(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{pngUpload(t, "one.png", 4, 4), pngUpload(t, "two.png", 4, 4)})

	_, ok := s.ApplyDelta(core.Delta{core.FieldExposure: 50})
	require.True(t, ok)

	require.NoError(t, s.Select("img2"))
	assert.Zero(t, s.ActiveState().Settings.Exposure)
	s.ApplyDelta(core.Delta{core.FieldExposure: -20})

	require.NoError(t, s.Select("img1"))
	assert.Equal(t, 50.0, s.ActiveState().Settings.Exposure)
	assert.Equal(t, -20.0, s.State("img2").Settings.Exposure)
}

func TestSelectRoundTripKeepsState(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{pngUpload(t, "one.png", 4, 4), pngUpload(t, "two.png", 4, 4)})

	s.ApplyDelta(core.Delta{core.FieldTint: 30, core.FieldGrain: 12})
	s.SetTransform(core.Transform{X: 14, Y: -6, Scale: 2})
	s.Zoom(1)
	want := s.ActiveState()

	require.NoError(t, s.Select("img2"))
	require.NoError(t, s.Select("img1"))
	assert.Equal(t, want, s.ActiveState())
	assert.InDelta(t, 180.0, want.ZoomPercentage, 1e-9)

	assert.Error(t, s.Select("img9"))
	assert.Equal(t, "img1", s.ActiveID())
}

func TestPanelDeltasMergeNonDestructively(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{pngUpload(t, "one.png", 4, 4)})

	s.ApplyDelta(core.Delta{core.FieldExposure: 10, core.FieldShadows: 20})
	s.ApplyDelta(core.Delta{core.FieldTemperature: -40})
	st, _ := s.ApplyDelta(core.Delta{core.FieldGrain: 500})

	assert.Equal(t, core.Settings{Exposure: 10, Shadows: 20, Temperature: -40, Grain: 100}, st.Settings)
}

func TestRemoveReselects(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{
		pngUpload(t, "one.png", 4, 4),
		pngUpload(t, "two.png", 4, 4),
		pngUpload(t, "three.png", 4, 4),
	})
	require.NoError(t, s.Select("img2"))
	s.ApplyDelta(core.Delta{core.FieldClarity: 40})

	require.NoError(t, s.Remove("img2"))
	assert.Equal(t, "img3", s.ActiveID())
	assert.True(t, s.State("img2").Settings.IsIdentity())

	require.NoError(t, s.Remove("img3"))
	assert.Equal(t, "img1", s.ActiveID())
	require.NoError(t, s.Remove("img1"))
	assert.Equal(t, "", s.ActiveID())

	assert.True(t, errors.Is(s.Remove("img1"), core.ErrUnknownImage))
}

func TestResetActive(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{pngUpload(t, "one.png", 4, 4)})
	s.ApplyDelta(core.Delta{core.FieldSaturation: -100})
	s.Zoom(-1)

	s.ResetActive()
	assert.Equal(t, core.DefaultImageState(), s.ActiveState())
	assert.False(t, s.CanExport())
}

func TestViewEvents(t *testing.T) {
	s := newSession(t)
	var views []view.SurfaceKind
	var dividers []float64
	s.On(EventViewChanged, func(d interface{}) { views = append(views, d.(view.State).Surface()) })
	s.On(EventDividerChanged, func(d interface{}) { dividers = append(dividers, d.(float64)) })

	s.ToggleTwo()
	s.ToggleTrans()
	s.SetDivider(80)
	s.SetDivider(-5)

	assert.Equal(t, []view.SurfaceKind{view.SurfaceCompare, view.SurfaceSwipe}, views)
	assert.Equal(t, []float64{80, 0}, dividers)
}

func TestExport(t *testing.T) {
	s := newSession(t)
	artifact, err := s.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, artifact, "nothing selected")

	s.Upload([]core.Upload{pngUpload(t, "beach.jpg", 6, 4)})
	artifact, err = s.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, artifact, "identity settings")

	s.ApplyDelta(core.Delta{core.FieldExposure: 20, core.FieldGrain: 10})
	require.True(t, s.CanExport())

	var progress []float64
	artifact, err = s.Export(context.Background(), func(f float64) { progress = append(progress, f) })
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, "edited_beach.png", artifact.Name)
	assert.Equal(t, 1.0, progress[len(progress)-1])

	decoded, err := png.Decode(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(6, 4), decoded.Bounds().Size())
}

func TestExportCancelled(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{pngUpload(t, "beach.png", 4, 4)})
	s.ApplyDelta(core.Delta{core.FieldExposure: 20})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Export(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, s.CanExport())
}

func TestThumbnails(t *testing.T) {
	s := newSession(t)
	s.Upload([]core.Upload{pngUpload(t, "wide.png", 32, 16), pngUpload(t, "b.png", 4, 4)})
	s.ApplyDelta(core.Delta{core.FieldBlacks: 10})

	thumbs := s.Thumbnails(context.Background())
	require.Len(t, thumbs, 2)
	assert.Equal(t, "img1", thumbs[0].ID)
	assert.True(t, thumbs[0].Active)
	assert.True(t, thumbs[0].Edited)
	assert.False(t, thumbs[1].Edited)
	assert.Equal(t, image.Pt(8, 4), thumbs[0].Image.Bounds().Size())
}

func TestPreviewFidelity(t *testing.T) {
	s := newSession(t)
	_, err := s.PreviewFidelity(context.Background())
	assert.True(t, errors.Is(err, core.ErrUnknownImage))

	s.Upload([]core.Upload{pngUpload(t, "one.png", 16, 16)})
	_, err = s.PreviewFidelity(context.Background())
	assert.True(t, errors.Is(err, export.ErrNoAdjustments))

	s.ApplyDelta(core.Delta{core.FieldExposure: 10})
	scores, err := s.PreviewFidelity(context.Background())
	require.NoError(t, err)
	var keys []string
	for _, score := range scores {
		keys = append(keys, score.Key)
	}
	assert.Equal(t, []string{"max_delta", "mse", "psnr"}, keys)
}

func TestClearListeners(t *testing.T) {
	s := newSession(t)
	fired := 0
	s.On(EventViewChanged, func(interface{}) { fired++ })
	s.On(EventImagesChanged, func(interface{}) { fired++ })

	s.ToggleTwo()
	require.Equal(t, 1, fired)

	s.ClearListeners()
	s.ToggleTwo()
	s.Upload([]core.Upload{pngUpload(t, "one.png", 4, 4)})
	assert.Equal(t, 1, fired)
}

func TestSelectAndRemoveLogStoredState(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	cfg := config.Default()
	cfg.Render.ThumbnailSize = 8
	s := New(logger, cfg)

	s.Upload([]core.Upload{pngUpload(t, "one.png", 4, 4), pngUpload(t, "two.png", 4, 4)})
	s.ApplyDelta(core.Delta{core.FieldExposure: 20})

	require.NoError(t, s.Select("img2"))
	selected := hook.LastEntry()
	require.NotNil(t, selected)
	assert.Equal(t, "Image selected", selected.Message)
	assert.Equal(t, false, selected.Data["restored"])

	require.NoError(t, s.Select("img1"))
	assert.Equal(t, true, hook.LastEntry().Data["restored"])

	require.NoError(t, s.Remove("img1"))
	var removed *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Image removed" {
			removed = entry
		}
	}
	require.NotNil(t, removed)
	assert.Equal(t, 0, removed.Data["states"])
}
