// Per-image edit state with isolated, atomic updates
package core

import "sync"

// ImageState is everything persisted for one image between selections
type ImageState struct {
	Settings       Settings  `json:"settings"`
	Transform      Transform `json:"transform"`
	ZoomPercentage float64   `json:"zoom_percentage"`
}

// DefaultImageState returns a fresh default state. Each call builds a new
// value; no default instance is shared between images.
func DefaultImageState() ImageState {
	t := DefaultTransform()
	return ImageState{
		Settings:       DefaultSettings(),
		Transform:      t,
		ZoomPercentage: t.ZoomPercentage(),
	}
}

// normalize keeps the derived zoom percentage and the domains consistent
func (s ImageState) normalize() ImageState {
	s.Settings = s.Settings.Clamp()
	s.Transform = s.Transform.Normalize()
	s.ZoomPercentage = s.Transform.ZoomPercentage()
	return s
}

// StateStore owns the ImageState of every image, keyed by image id
type StateStore struct {
	mu     sync.Mutex
	states map[string]ImageState
}

// NewStateStore creates an empty store
func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]ImageState),
	}
}

// Get returns the stored state, or defaults when the id has none
func (s *StateStore) Get(id string) ImageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[id]; ok {
		return state
	}
	return DefaultImageState()
}

// Has reports whether a persisted entry exists for id
func (s *StateStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.states[id]
	return ok
}

// Len returns the number of persisted entries
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Update performs an atomic read-modify-write of one entry. fn receives the
// current state (or defaults) and returns the replacement, which is stored
// whole. Updates are serialized, so concurrent callers never lose a merge.
func (s *StateStore) Update(id string, fn func(ImageState) ImageState) ImageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[id]
	if !ok {
		current = DefaultImageState()
	}

	next := fn(current).normalize()
	s.states[id] = next
	return next
}

// ApplyDelta merges a partial settings record into the entry for id
func (s *StateStore) ApplyDelta(id string, d Delta) ImageState {
	return s.Update(id, func(state ImageState) ImageState {
		state.Settings = state.Settings.Merge(d)
		return state
	})
}

// SetTransform replaces the pan/zoom transform for id
func (s *StateStore) SetTransform(id string, t Transform) ImageState {
	return s.Update(id, func(state ImageState) ImageState {
		state.Transform = t
		return state
	})
}

// Remove deletes the entry for id. Removing an unknown id is a no-op.
func (s *StateStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}

// Reset restores id to defaults by dropping its persisted entry
func (s *StateStore) Reset(id string) ImageState {
	s.Remove(id)
	return DefaultImageState()
}
