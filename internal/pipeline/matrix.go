// Color matrices in 0..255 channel space
package pipeline

import (
	"gonum.org/v1/gonum/mat"
)

// ColorMatrix is a 4x5 color transformation in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// The fifth column is an offset expressed in 0..255 units.
type ColorMatrix [20]float64

// IdentityMatrix passes colors through unchanged
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// BrightnessMatrix scales the color channels by factor
func BrightnessMatrix(factor float64) ColorMatrix {
	return ColorMatrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix computes (c - 128) * factor + 128 per channel
func ContrastMatrix(factor float64) ColorMatrix {
	offset := midGray * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix blends between the gray luma (factor 0) and the
// original color (factor 1)
func SaturationMatrix(factor float64) ColorMatrix {
	inv := 1 - factor
	return ColorMatrix{
		lumaR*inv + factor, lumaG * inv, lumaB * inv, 0, 0,
		lumaR * inv, lumaG*inv + factor, lumaB * inv, 0, 0,
		lumaR * inv, lumaG * inv, lumaB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ShiftMatrix adds a constant to each color channel
func ShiftMatrix(r, g, b float64) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, r,
		0, 1, 0, 0, g,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// IsIdentity reports whether m leaves every color unchanged
func (m ColorMatrix) IsIdentity() bool {
	return m == IdentityMatrix()
}

// homogeneous expands m to the 5x5 form used for composition
func (m ColorMatrix) homogeneous() *mat.Dense {
	data := make([]float64, 25)
	copy(data, m[:])
	data[24] = 1
	return mat.NewDense(5, 5, data)
}

// Then returns the matrix that applies m first and next afterwards
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var product mat.Dense
	product.Mul(next.homogeneous(), m.homogeneous())

	var out ColorMatrix
	raw := product.RawMatrix()
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			out[row*5+col] = raw.Data[row*raw.Stride+col]
		}
	}
	return out
}

// Apply transforms one straight-alpha color, clamping the result
func (m ColorMatrix) Apply(r, g, b, a float64) (float64, float64, float64, float64) {
	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
	return clampChannel(nr), clampChannel(ng), clampChannel(nb), clampChannel(na)
}
