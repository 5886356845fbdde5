// Session ties the image collection, per-image state, view mode and export
// together for the UI
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"photo-retouch/internal/config"
	"photo-retouch/internal/core"
	"photo-retouch/internal/export"
	imgio "photo-retouch/internal/io"
	"photo-retouch/internal/metrics"
	"photo-retouch/internal/view"
)

// EventType identifies session events
type EventType int

const (
	EventImagesChanged EventType = iota
	EventActiveChanged
	EventSettingsChanged
	EventTransformChanged
	EventViewChanged
	EventDividerChanged
	EventExported
)

// EventListener is called when an event occurs
type EventListener func(data interface{})

// Thumbnail is the read-only view of one image for the list surface
type Thumbnail struct {
	ID     string
	Name   string
	Image  image.Image
	Edited bool
	Active bool
}

// Session is the single owner of the editing state
type Session struct {
	logger   *logrus.Logger
	loader   *imgio.ImageLoader
	renderer *export.Renderer
	images   *core.Collection
	store    *core.StateStore
	view     *view.Controller

	progressSteps    int
	progressInterval time.Duration
	thumbnailSize    int

	mu        sync.RWMutex
	listeners map[EventType][]EventListener
	thumbs    map[string]image.Image
	exporting bool
	lastView  view.State
}

// New creates an empty session configured from cfg
func New(logger *logrus.Logger, cfg config.Config) *Session {
	s := &Session{
		logger:           logger,
		loader:           imgio.NewImageLoader(logger),
		renderer:         export.NewRenderer(logger, cfg.PipelineOptions(), cfg.Export.Prefix),
		images:           core.NewCollection(),
		store:            core.NewStateStore(),
		view:             view.NewController(),
		progressSteps:    cfg.Progress.Steps,
		progressInterval: cfg.Progress.Interval(),
		thumbnailSize:    cfg.Render.ThumbnailSize,
		listeners:        make(map[EventType][]EventListener),
		thumbs:           make(map[string]image.Image),
	}
	s.lastView = s.view.State()
	s.view.OnChange(s.viewChanged)
	return s
}

// Loader exposes the image decoder shared with the render surfaces
func (s *Session) Loader() *imgio.ImageLoader {
	return s.loader
}

// On registers a listener for an event type
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the event type
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// ClearListeners detaches every listener. Used on teardown before the
// widgets they update are destroyed.
func (s *Session) ClearListeners() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = make(map[EventType][]EventListener)
}

func (s *Session) viewChanged(st view.State) {
	s.mu.Lock()
	prev := s.lastView
	s.lastView = st
	s.mu.Unlock()

	if st.Mode != prev.Mode || st.Trans != prev.Trans {
		s.Emit(EventViewChanged, st)
	}
	if st.Divider != prev.Divider {
		s.Emit(EventDividerChanged, st.Divider)
	}
}

// Upload adds every buffer whose content is an image. Other files are
// skipped. The first upload into an empty session selects the first new
// image.
func (s *Session) Upload(files []core.Upload) []core.ImageRecord {
	wasEmpty := s.images.IsEmpty()

	var added []core.ImageRecord
	for _, f := range files {
		format, err := s.loader.Sniff(f.Data)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"file":  f.Name,
				"error": err,
			}).Warn("Skipping upload that is not an image")
			continue
		}
		added = append(added, core.ImageRecord{
			ID:          s.images.NewID(),
			DisplayName: f.Name,
			Format:      format,
			Data:        f.Data,
		})
	}
	if len(added) == 0 {
		return nil
	}

	s.images.Append(added...)
	s.logger.WithFields(logrus.Fields{
		"added": len(added),
		"total": s.images.Len(),
	}).Info("Images uploaded")
	s.Emit(EventImagesChanged, s.images.Records())

	if wasEmpty {
		if err := s.images.Select(added[0].ID); err == nil {
			s.Emit(EventActiveChanged, added[0].ID)
		}
	}
	return added
}

// Records returns the uploaded images in display order
func (s *Session) Records() []core.ImageRecord {
	return s.images.Records()
}

// ActiveID returns the selected image id, or "" when nothing is selected
func (s *Session) ActiveID() string {
	return s.images.ActiveID()
}

// Active returns the selected image record
func (s *Session) Active() (core.ImageRecord, bool) {
	return s.images.Active()
}

// State returns the persisted state of id, defaults when it has none
func (s *Session) State(id string) core.ImageState {
	return s.store.Get(id)
}

// ActiveState returns the state of the selected image
func (s *Session) ActiveState() core.ImageState {
	return s.store.Get(s.images.ActiveID())
}

// ActiveTransform returns the pan and zoom of the selected image
func (s *Session) ActiveTransform() core.Transform {
	return s.ActiveState().Transform
}

// Select activates id. Edits are committed to the store as they happen, so
// the outgoing image's state is already persisted; the incoming image starts
// from its stored state or defaults.
func (s *Session) Select(id string) error {
	if id == s.images.ActiveID() {
		return nil
	}
	if err := s.images.Select(id); err != nil {
		return fmt.Errorf("select: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"image":    id,
		"restored": s.store.Has(id),
	}).Debug("Image selected")
	s.Emit(EventActiveChanged, id)
	return nil
}

// Remove deletes the image and its state. Removing the active image selects
// the one that takes its place, else the previous one.
func (s *Session) Remove(id string) error {
	before := s.images.ActiveID()
	after, err := s.images.Remove(id)
	if err != nil {
		return err
	}

	s.store.Remove(id)
	s.mu.Lock()
	delete(s.thumbs, id)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"image":  id,
		"active": after,
		"states": s.store.Len(),
	}).Info("Image removed")

	s.Emit(EventImagesChanged, s.images.Records())
	if after != before {
		s.Emit(EventActiveChanged, after)
	}
	return nil
}

// ApplyDelta merges a panel's partial settings into the active image
func (s *Session) ApplyDelta(delta core.Delta) (core.ImageState, bool) {
	id := s.images.ActiveID()
	if id == "" || len(delta) == 0 {
		return s.store.Get(id), false
	}

	state := s.store.ApplyDelta(id, delta)
	s.Emit(EventSettingsChanged, state)
	return state, true
}

// SetTransform stores the pan and zoom of the active image
func (s *Session) SetTransform(t core.Transform) {
	id := s.images.ActiveID()
	if id == "" {
		return
	}
	state := s.store.SetTransform(id, t)
	s.Emit(EventTransformChanged, state)
}

// Zoom applies one wheel step to the active image
func (s *Session) Zoom(deltaY float64) {
	id := s.images.ActiveID()
	if id == "" {
		return
	}
	state := s.store.Update(id, func(st core.ImageState) core.ImageState {
		st.Transform = st.Transform.Zoom(deltaY)
		return st
	})
	s.Emit(EventTransformChanged, state)
}

// ResetActive restores the defaults of the active image
func (s *Session) ResetActive() {
	id := s.images.ActiveID()
	if id == "" {
		return
	}
	state := s.store.Reset(id)
	s.logger.WithField("image", id).Info("Adjustments reset")
	s.Emit(EventSettingsChanged, state)
	s.Emit(EventTransformChanged, state)
}

// ViewState returns the current view mode
func (s *Session) ViewState() view.State {
	return s.view.State()
}

func (s *Session) ToggleTwo() view.State {
	return s.view.ToggleTwo()
}

func (s *Session) ToggleTrans() view.State {
	return s.view.ToggleTrans()
}

// SetDivider moves the swipe divider, in percent of the surface width
func (s *Session) SetDivider(percent float64) {
	s.view.SetDivider(percent)
}

// CanExport reports whether exporting the active image would produce a file
func (s *Session) CanExport() bool {
	s.mu.RLock()
	busy := s.exporting
	s.mu.RUnlock()
	if busy {
		return false
	}
	if _, ok := s.images.Active(); !ok {
		return false
	}
	return export.CanRender(s.ActiveState().Settings)
}

// Export renders the active image with its settings. It reports progress
// while the sequence runs and returns nil without error when there is
// nothing to export.
func (s *Session) Export(ctx context.Context, onProgress core.ProgressFunc) (*export.Artifact, error) {
	rec, ok := s.images.Active()
	if !ok {
		return nil, nil
	}
	settings := s.store.Get(rec.ID).Settings
	if !export.CanRender(settings) {
		return nil, nil
	}

	s.mu.Lock()
	if s.exporting {
		s.mu.Unlock()
		return nil, nil
	}
	s.exporting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.exporting = false
		s.mu.Unlock()
	}()

	if onProgress == nil {
		onProgress = func(float64) {}
	}
	if err := core.RunProgress(ctx, s.progressSteps, s.progressInterval, onProgress); err != nil {
		return nil, fmt.Errorf("export %s: %w", rec.DisplayName, err)
	}

	src, err := s.loader.Decode(ctx, rec.Data)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", rec.DisplayName, err)
	}

	artifact, err := s.renderer.Export(ctx, rec, src, settings)
	if errors.Is(err, export.ErrNoAdjustments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", rec.DisplayName, err)
	}

	s.Emit(EventExported, artifact.Name)
	return artifact, nil
}

// PreviewFidelity compares the live preview rendering of the active image
// with its export rendering, on the thumbnail to keep it cheap. The grain
// radius is scaled to the thumbnail so both match the full-size result.
func (s *Session) PreviewFidelity(ctx context.Context) ([]metrics.Score, error) {
	rec, ok := s.images.Active()
	if !ok {
		return nil, fmt.Errorf("fidelity: %w", core.ErrUnknownImage)
	}
	thumb := s.thumbnail(ctx, rec)
	if thumb == nil {
		return nil, fmt.Errorf("fidelity: no preview for %s", rec.DisplayName)
	}

	scale := 1.0
	if w, _, err := s.loader.Dimensions(rec.Data); err == nil && w > 0 {
		scale = float64(thumb.Bounds().Dx()) / float64(w)
	}
	return s.renderer.Agreement(ctx, thumb, s.store.Get(rec.ID).Settings, scale)
}

// Thumbnails returns every image with its preview and edited flag
func (s *Session) Thumbnails(ctx context.Context) []Thumbnail {
	records := s.images.Records()
	active := s.images.ActiveID()

	thumbs := make([]Thumbnail, 0, len(records))
	for _, rec := range records {
		thumbs = append(thumbs, Thumbnail{
			ID:     rec.ID,
			Name:   rec.DisplayName,
			Image:  s.thumbnail(ctx, rec),
			Edited: !s.store.Get(rec.ID).Settings.IsIdentity(),
			Active: rec.ID == active,
		})
	}
	return thumbs
}

func (s *Session) thumbnail(ctx context.Context, rec core.ImageRecord) image.Image {
	s.mu.RLock()
	img, ok := s.thumbs[rec.ID]
	s.mu.RUnlock()
	if ok {
		return img
	}

	src, err := s.loader.Decode(ctx, rec.Data)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"image": rec.ID,
			"error": err,
		}).Warn("Failed to build thumbnail")
		return nil
	}
	img = s.loader.Thumbnail(src, s.thumbnailSize, s.thumbnailSize)

	s.mu.Lock()
	s.thumbs[rec.ID] = img
	s.mu.Unlock()
	return img
}
