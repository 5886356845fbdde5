package render

import (
	"errors"
	"sync"
)

// ErrSlotBusy is returned when a surface is created in a slot another live
// surface still owns
var ErrSlotBusy = errors.New("view slot already owned")

// Slot is a place in the window a surface draws into. At most one surface
// owns it at a time.
type Slot struct {
	mu    sync.Mutex
	name  string
	owner *Surface
}

func NewSlot(name string) *Slot {
	return &Slot{name: name}
}

func (s *Slot) Name() string {
	return s.name
}

// Owner returns the surface currently holding the slot, or nil
func (s *Slot) Owner() *Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Slot) acquire(surface *Surface) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != nil && s.owner != surface {
		return ErrSlotBusy
	}
	s.owner = surface
	return nil
}

func (s *Slot) release(surface *Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == surface {
		s.owner = nil
	}
}
