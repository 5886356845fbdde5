package render

import (
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"photo-retouch/internal/core"
)

// Manager keeps at most one live surface in its slot, replacing it whenever
// the image, the view kind or the viewport size changes
type Manager struct {
	slot *Slot
	opts Options

	mu      sync.Mutex
	current *Surface
}

func NewManager(slot *Slot, opts Options) *Manager {
	return &Manager{slot: slot, opts: opts}
}

// Current returns the live surface, or nil
func (m *Manager) Current() *Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Sync brings the slot in line with p. A surface exists only while an image
// is set and the viewport has a size.
func (m *Manager) Sync(p Params) (*Surface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.Alive() && sameScene(m.current.Params(), p) {
		m.current.SetSettings(p.Settings)
		m.current.SetTransform(p.Transform)
		m.current.SetDivider(p.Divider)
		return m.current, nil
	}

	m.destroyLocked()
	if p.ImageID == "" || p.Width <= 0 || p.Height <= 0 {
		return nil, nil
	}

	s, err := NewSurface(m.slot, p, m.opts)
	if err != nil {
		m.opts.Logger.WithFields(logrus.Fields{
			"slot":  m.slot.Name(),
			"error": err,
		}).Error("Failed to create render surface")
		return nil, err
	}
	m.current = s
	return s, nil
}

// Update pushes new settings, transform and divider into the live surface
// without rebuilding it
func (m *Manager) Update(settings core.Settings, t core.Transform, divider float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	m.current.SetSettings(settings)
	m.current.SetTransform(t)
	m.current.SetDivider(divider)
}

// Layout returns the scene of the live surface
func (m *Manager) Layout() Layout {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Layout{}
	}
	return m.current.Layout()
}

// Rasterize draws the live surface, or a blank frame when there is none
func (m *Manager) Rasterize(w, h int) image.Image {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil {
		img := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = m.opts.BackgroundColor.R
			img.Pix[i+1] = m.opts.BackgroundColor.G
			img.Pix[i+2] = m.opts.BackgroundColor.B
			img.Pix[i+3] = m.opts.BackgroundColor.A
		}
		return img
	}
	return current.Rasterize(w, h)
}

// Destroy tears down the live surface, if any
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked()
}

func (m *Manager) destroyLocked() {
	if m.current == nil {
		return
	}
	m.current.Destroy()
	m.current = nil
}

func sameScene(a, b Params) bool {
	return a.ImageID == b.ImageID &&
		a.Kind == b.Kind &&
		a.Width == b.Width &&
		a.Height == b.Height
}
