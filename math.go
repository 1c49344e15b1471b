package pbr

import "github.com/go-gl/mathgl/mgl32"

// clampedDot floors the cosine between two directions at zero. Negative
// cosines are not valid BRDF inputs; they clamp to 0, never to |x|.
func clampedDot(a, b mgl32.Vec3) float32 {
	return max(a.Dot(b), 0)
}

func clamp01(x float32) float32 {
	return mgl32.Clamp(x, 0, 1)
}

// mul3 is the component-wise (Hadamard) product, used for color math.
func mul3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func mul4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func mix3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// max3 is the largest color channel.
func max3(v mgl32.Vec3) float32 {
	return max(v[0], v[1], v[2])
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// reflect3 mirrors i about n. i points toward the surface, n away from it.
func reflect3(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * i.Dot(n)))
}

// safeNormalize avoids NaNs on degenerate inputs (zero-length vectors at
// geometry seams); the fallback axis is arbitrary but deterministic.
func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.LenSqr() < 1e-12 {
		return mgl32.Vec3{0, 0, 1}
	}
	return v.Normalize()
}
