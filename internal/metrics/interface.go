// Image agreement metrics between preview and export renderings
package metrics

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Metric defines the interface for comparison metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(reference, candidate image.Image) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetDescription returns the metric description
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate closer images
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	e.Register("max_delta", NewMaxDelta())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names, sorted
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, reference, candidate image.Image) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(reference, candidate)
}

// Score is one metric result with the metadata needed to present it
type Score struct {
	Key          string
	Name         string
	Description  string
	Value        float64
	Min, Max     float64
	HigherBetter bool
}

// Closeness maps the value onto [0, 1], where 1 means the images agree
func (s Score) Closeness() float64 {
	if s.Max <= s.Min || math.IsNaN(s.Value) {
		return 0
	}
	f := (s.Value - s.Min) / (s.Max - s.Min)
	f = math.Max(0, math.Min(f, 1))
	if !s.HigherBetter {
		f = 1 - f
	}
	return f
}

// Evaluate calculates every registered metric in name order. Metrics that
// fail are left out.
func (e *Evaluator) Evaluate(reference, candidate image.Image) []Score {
	var scores []Score
	for _, name := range e.Names() {
		value, err := e.Calculate(name, reference, candidate)
		if err != nil {
			continue
		}
		metric := e.metrics[name]
		lo, hi := metric.GetRange()
		scores = append(scores, Score{
			Key:          name,
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Value:        value,
			Min:          lo,
			Max:          hi,
			HigherBetter: metric.IsHigherBetter(),
		})
	}
	return scores
}
