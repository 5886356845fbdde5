// Per-image adjustment settings and their parameter domains
package core

import (
	"fmt"
	"math"
	"strings"
)

// Field identifies one named adjustment parameter
type Field int

const (
	FieldExposure Field = iota
	FieldHighlights
	FieldShadows
	FieldWhites
	FieldBlacks
	FieldTemperature
	FieldTint
	FieldSaturation
	FieldTexture
	FieldClarity
	FieldGrain
)

// AllFields lists every field in pipeline order of the settings panels
var AllFields = []Field{
	FieldExposure,
	FieldHighlights,
	FieldShadows,
	FieldWhites,
	FieldBlacks,
	FieldTemperature,
	FieldTint,
	FieldSaturation,
	FieldTexture,
	FieldClarity,
	FieldGrain,
}

var fieldNames = map[Field]string{
	FieldExposure:    "exposure",
	FieldHighlights:  "highlights",
	FieldShadows:     "shadows",
	FieldWhites:      "whites",
	FieldBlacks:      "blacks",
	FieldTemperature: "temperature",
	FieldTint:        "tint",
	FieldSaturation:  "saturation",
	FieldTexture:     "texture",
	FieldClarity:     "clarity",
	FieldGrain:       "grain",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Label returns the capitalised name shown next to a slider
func (f Field) Label() string {
	name := f.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Domain returns the inclusive range accepted for the field
func (f Field) Domain() (min, max float64) {
	if f == FieldGrain {
		return 0, 100
	}
	return -100, 100
}

// Clamp forces v into the field domain. NaN maps to the neutral value 0.
func (f Field) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	min, max := f.Domain()
	return math.Max(min, math.Min(max, v))
}

// ParseField resolves a field by its name, case-insensitively
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown adjustment field: %q", name)
}

// Settings is the complete adjustment record of one image. The zero value is
// the identity record. Settings is a value type: it is only ever replaced by
// Merge, never modified in place by the store.
type Settings struct {
	Exposure    float64 `toml:"exposure" json:"exposure"`
	Highlights  float64 `toml:"highlights" json:"highlights"`
	Shadows     float64 `toml:"shadows" json:"shadows"`
	Whites      float64 `toml:"whites" json:"whites"`
	Blacks      float64 `toml:"blacks" json:"blacks"`
	Temperature float64 `toml:"temperature" json:"temperature"`
	Tint        float64 `toml:"tint" json:"tint"`
	Saturation  float64 `toml:"saturation" json:"saturation"`
	Texture     float64 `toml:"texture" json:"texture"`
	Clarity     float64 `toml:"clarity" json:"clarity"`
	Grain       float64 `toml:"grain" json:"grain"`
}

// DefaultSettings returns a fresh identity record
func DefaultSettings() Settings {
	return Settings{}
}

// Get returns the value of a single field
func (s Settings) Get(f Field) float64 {
	switch f {
	case FieldExposure:
		return s.Exposure
	case FieldHighlights:
		return s.Highlights
	case FieldShadows:
		return s.Shadows
	case FieldWhites:
		return s.Whites
	case FieldBlacks:
		return s.Blacks
	case FieldTemperature:
		return s.Temperature
	case FieldTint:
		return s.Tint
	case FieldSaturation:
		return s.Saturation
	case FieldTexture:
		return s.Texture
	case FieldClarity:
		return s.Clarity
	case FieldGrain:
		return s.Grain
	}
	return 0
}

// With returns a copy of s with one field replaced, clamped to its domain
func (s Settings) With(f Field, v float64) Settings {
	v = f.Clamp(v)
	switch f {
	case FieldExposure:
		s.Exposure = v
	case FieldHighlights:
		s.Highlights = v
	case FieldShadows:
		s.Shadows = v
	case FieldWhites:
		s.Whites = v
	case FieldBlacks:
		s.Blacks = v
	case FieldTemperature:
		s.Temperature = v
	case FieldTint:
		s.Tint = v
	case FieldSaturation:
		s.Saturation = v
	case FieldTexture:
		s.Texture = v
	case FieldClarity:
		s.Clarity = v
	case FieldGrain:
		s.Grain = v
	}
	return s
}

// Merge returns a new record built from s plus every field present in d
func (s Settings) Merge(d Delta) Settings {
	for f, v := range d {
		s = s.With(f, v)
	}
	return s
}

// Clamp returns s with every field forced into its domain
func (s Settings) Clamp() Settings {
	for _, f := range AllFields {
		s = s.With(f, s.Get(f))
	}
	return s
}

// IsIdentity reports whether no adjustment differs from its default
func (s Settings) IsIdentity() bool {
	return s == Settings{}
}

// Delta is a partial settings record emitted by one settings panel
type Delta map[Field]float64

// Only returns the subset of d restricted to the given fields
func (d Delta) Only(fields ...Field) Delta {
	out := make(Delta, len(fields))
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	return out
}
