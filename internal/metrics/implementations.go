// Concrete implementations of comparison metrics
package metrics

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(reference, candidate image.Image) (float64, error) {
	mse, err := meanSquaredError(reference, candidate)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio between the two renderings"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100 // Practical range, identical images are +Inf
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(reference, candidate image.Image) (float64, error) {
	return meanSquaredError(reference, candidate)
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error over all color channels"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025 // 255^2
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// MaxDelta is the largest absolute difference of any channel of any pixel
type MaxDelta struct{}

// NewMaxDelta creates a new MaxDelta metric
func NewMaxDelta() *MaxDelta {
	return &MaxDelta{}
}

func (d *MaxDelta) Calculate(reference, candidate image.Image) (float64, error) {
	diff, err := absDiff(reference, candidate)
	if err != nil {
		return 0, err
	}
	defer diff.Close()

	flat := diff.Reshape(1, 0)
	defer flat.Close()

	_, maxVal, _, _ := gocv.MinMaxLoc(flat)
	return float64(maxVal), nil
}

func (d *MaxDelta) GetName() string {
	return "Max Delta"
}

func (d *MaxDelta) GetDescription() string {
	return "Largest single channel difference"
}

func (d *MaxDelta) GetRange() (float64, float64) {
	return 0, 255
}

func (d *MaxDelta) IsHigherBetter() bool {
	return false
}

func meanSquaredError(reference, candidate image.Image) (float64, error) {
	diff, err := absDiff(reference, candidate)
	if err != nil {
		return 0, err
	}
	defer diff.Close()

	wide := gocv.NewMat()
	defer wide.Close()
	diff.ConvertTo(&wide, gocv.MatTypeCV32F)

	squared := gocv.NewMat()
	defer squared.Close()
	gocv.Multiply(wide, wide, &squared)

	mean := squared.Mean()
	return (mean.Val1 + mean.Val2 + mean.Val3) / 3, nil
}

// absDiff returns the per-channel absolute difference of two RGB renderings
func absDiff(reference, candidate image.Image) (gocv.Mat, error) {
	if reference == nil || candidate == nil {
		return gocv.NewMat(), fmt.Errorf("empty images")
	}
	if reference.Bounds().Size() != candidate.Bounds().Size() {
		return gocv.NewMat(), fmt.Errorf("image dimensions mismatch: %v vs %v",
			reference.Bounds().Size(), candidate.Bounds().Size())
	}

	a, err := gocv.ImageToMatRGB(reference)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("reference to mat: %w", err)
	}
	defer a.Close()

	b, err := gocv.ImageToMatRGB(candidate)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("candidate to mat: %w", err)
	}
	defer b.Close()

	diff := gocv.NewMat()
	gocv.AbsDiff(a, b, &diff)
	return diff, nil
}
