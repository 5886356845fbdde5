// Uploaded image records and the active selection
package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownImage is returned when an id is not part of the collection
var ErrUnknownImage = errors.New("unknown image")

// Upload is one file handed over by the file-selection surface
type Upload struct {
	Name string
	Data []byte
}

// ImageRecord is an uploaded image. Records are never mutated after creation.
type ImageRecord struct {
	ID          string
	DisplayName string
	Format      string // file extension detected from content, e.g. "png"
	Data        []byte
}

// Collection is the ordered set of uploaded images plus the active
// selection. Insertion order is display order.
type Collection struct {
	mu       sync.RWMutex
	records  []ImageRecord
	activeID string
	nextID   int
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{nextID: 1}
}

// NewID mints an opaque id unique within this collection
func (c *Collection) NewID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := fmt.Sprintf("img%d", c.nextID)
	c.nextID++
	return id
}

// Append adds records at the end of the display order
func (c *Collection) Append(records ...ImageRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
}

// Records returns a copy of all records in display order
func (c *Collection) Records() []ImageRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]ImageRecord, len(c.records))
	copy(result, c.records)
	return result
}

// Len returns the number of records
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// IsEmpty reports whether the collection is back at the upload prompt
func (c *Collection) IsEmpty() bool {
	return c.Len() == 0
}

// Get returns the record with the given id
func (c *Collection) Get(id string) (ImageRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return ImageRecord{}, false
	}
	return c.records[i], true
}

// Index returns the display index of id, or -1
func (c *Collection) Index(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id)
}

func (c *Collection) indexOf(id string) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// ActiveID returns the selected id, or "" when nothing is selected
func (c *Collection) ActiveID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID
}

// Active returns the selected record
func (c *Collection) Active() (ImageRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.activeID == "" {
		return ImageRecord{}, false
	}
	i := c.indexOf(c.activeID)
	if i < 0 {
		return ImageRecord{}, false
	}
	return c.records[i], true
}

// Select makes id the active image
func (c *Collection) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(id) < 0 {
		return fmt.Errorf("select %q: %w", id, ErrUnknownImage)
	}
	c.activeID = id
	return nil
}

// Remove deletes id and returns the id selected afterwards. When the removed
// image was active, the image that moved into its index is selected, or the
// previous one if it was last; an emptied collection selects nothing.
func (c *Collection) Remove(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return c.activeID, fmt.Errorf("remove %q: %w", id, ErrUnknownImage)
	}

	c.records[i].Data = nil
	c.records = append(c.records[:i], c.records[i+1:]...)

	if c.activeID != id {
		return c.activeID, nil
	}

	switch {
	case i < len(c.records):
		c.activeID = c.records[i].ID
	case i > 0:
		c.activeID = c.records[i-1].ID
	default:
		c.activeID = ""
	}
	return c.activeID, nil
}
