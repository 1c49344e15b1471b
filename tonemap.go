package pbr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ToneMap selects the curve applied to linear radiance before the sRGB
// transfer. The zero value is the ACES fit.
type ToneMap int

const (
	ToneMapACES ToneMap = iota
	ToneMapNone
)

// toneMap scales by exposure, applies the selected curve, and encodes
// the result for display.
func toneMap(c mgl32.Vec3, mode ToneMap, exposure float32) mgl32.Vec3 {
	c = c.Mul(exposure)
	if mode == ToneMapACES {
		c = mgl32.Vec3{acesFit(c[0]), acesFit(c[1]), acesFit(c[2])}
	}
	return mgl32.Vec3{linearToSRGB(c[0]), linearToSRGB(c[1]), linearToSRGB(c[2])}
}

// acesFit is Narkowicz' rational approximation of the ACES filmic
// curve.
func acesFit(x float32) float32 {
	const (
		a = 2.51
		b = 0.03
		c = 2.43
		d = 0.59
		e = 0.14
	)
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}

// The transfer functions use the plain 2.2 gamma approximation.

func linearToSRGB(x float32) float32 {
	return math32.Pow(max(x, 0), 1/2.2)
}

func srgbToLinear(x float32) float32 {
	return math32.Pow(max(x, 0), 2.2)
}
