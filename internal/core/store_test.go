package core

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStoreGetReturnsDefaultsForUnknownID(t *testing.T) {
	store := NewStateStore()

	state := store.Get("missing")
	assert.Equal(t, DefaultImageState(), state)
	assert.True(t, state.Settings.IsIdentity())
	assert.Equal(t, 1.0, state.Transform.Scale)
	assert.Equal(t, 100.0, state.ZoomPercentage)
	assert.False(t, store.Has("missing"))
}

func TestStateStoreIsolation(t *testing.T) {
	store := NewStateStore()
	store.ApplyDelta("b", Delta{FieldTint: 12})
	before := store.Get("b")

	store.ApplyDelta("a", Delta{FieldExposure: 40, FieldGrain: 10})
	store.SetTransform("a", Transform{X: 5, Y: -3, Scale: 2})

	assert.Equal(t, before, store.Get("b"))
	assert.Equal(t, 40.0, store.Get("a").Settings.Exposure)

	// a state read from the store is a value; changing it changes nothing stored
	got := store.Get("a")
	got.Settings.Exposure = -90
	assert.Equal(t, 40.0, store.Get("a").Settings.Exposure)
}

func TestStateStoreDefaultsAreNotShared(t *testing.T) {
	store := NewStateStore()

	store.ApplyDelta("a", Delta{FieldSaturation: 30})
	assert.True(t, store.Get("b").Settings.IsIdentity())
	assert.True(t, DefaultImageState().Settings.IsIdentity())
}

func TestStateStoreMergeIsNonDestructive(t *testing.T) {
	store := NewStateStore()

	store.ApplyDelta("a", Delta{FieldExposure: 10, FieldShadows: -5})
	store.ApplyDelta("a", Delta{FieldTemperature: 20})
	store.ApplyDelta("a", Delta{FieldGrain: 7})

	s := store.Get("a").Settings
	assert.Equal(t, 10.0, s.Exposure)
	assert.Equal(t, -5.0, s.Shadows)
	assert.Equal(t, 20.0, s.Temperature)
	assert.Equal(t, 7.0, s.Grain)
}

func TestStateStoreClampsOutOfDomainValues(t *testing.T) {
	store := NewStateStore()

	state := store.ApplyDelta("a", Delta{
		FieldExposure: 250,
		FieldBlacks:   -1000,
		FieldGrain:    -4,
		FieldTint:     math.NaN(),
	})
	assert.Equal(t, 100.0, state.Settings.Exposure)
	assert.Equal(t, -100.0, state.Settings.Blacks)
	assert.Equal(t, 0.0, state.Settings.Grain)
	assert.Equal(t, 0.0, state.Settings.Tint)

	state = store.SetTransform("a", Transform{Scale: 50})
	assert.Equal(t, MaxScale, state.Transform.Scale)
	assert.Equal(t, 500.0, state.ZoomPercentage)
}

func TestStateStoreResetAndRemove(t *testing.T) {
	store := NewStateStore()
	store.ApplyDelta("a", Delta{FieldClarity: 33})

	assert.Equal(t, DefaultImageState(), store.Reset("a"))
	assert.False(t, store.Has("a"))

	store.Remove("never-existed")
	assert.Equal(t, 0, store.Len())
}

func TestStateStoreConcurrentUpdatesAreSerialized(t *testing.T) {
	store := NewStateStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update("a", func(s ImageState) ImageState {
				s.Settings = s.Settings.With(FieldExposure, s.Settings.Exposure+1)
				return s
			})
		}()
	}
	wg.Wait()

	require.True(t, store.Has("a"))
	assert.Equal(t, 50.0, store.Get("a").Settings.Exposure)
}
