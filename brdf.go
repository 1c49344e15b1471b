package pbr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FresnelSchlick is Schlick's approximation of the Fresnel reflectance:
// f0 + (f90 - f0) * (1 - cosTheta)^5. At normal incidence it reduces to
// f0 exactly.
func FresnelSchlick(f0, f90 mgl32.Vec3, cosTheta float32) mgl32.Vec3 {
	p := clamp01(1 - cosTheta)
	p2 := p * p
	return f0.Add(f90.Sub(f0).Mul(p2 * p2 * p))
}

// BRDFLambertian is the diffuse lobe: albedo/pi weighted by the energy
// the Fresnel term did not claim for specular reflection.
func BRDFLambertian(f0, f90, albedo mgl32.Vec3, vDotH float32) mgl32.Vec3 {
	f := FresnelSchlick(f0, f90, vDotH)
	w := mgl32.Vec3{1 - f[0], 1 - f[1], 1 - f[2]}
	return mul3(w, albedo.Mul(1/math32.Pi))
}

// DistributionGGX is the Trowbridge-Reitz normal distribution evaluated
// with the physically linearized (squared perceptual) roughness.
func DistributionGGX(nDotH, alphaRoughness float32) float32 {
	a2 := alphaRoughness * alphaRoughness
	f := nDotH*nDotH*(a2-1) + 1
	return a2 / max(math32.Pi*f*f, 1e-8)
}

// VisibilityGGX is the height-correlated Smith visibility term. The
// masking sum can reach zero at grazing angles; that case contributes
// nothing rather than dividing by zero.
func VisibilityGGX(nDotL, nDotV, alphaRoughness float32) float32 {
	a2 := alphaRoughness * alphaRoughness

	ggxV := nDotL * math32.Sqrt(nDotV*nDotV*(1-a2)+a2)
	ggxL := nDotV * math32.Sqrt(nDotL*nDotL*(1-a2)+a2)

	if sum := ggxV + ggxL; sum > 0 {
		return 0.5 / sum
	}
	return 0
}

// BRDFSpecularGGX combines distribution, visibility and Fresnel into
// the microfacet specular lobe.
func BRDFSpecularGGX(f0, f90 mgl32.Vec3, alphaRoughness, vDotH, nDotL, nDotV, nDotH float32) mgl32.Vec3 {
	f := FresnelSchlick(f0, f90, vDotH)
	vis := VisibilityGGX(nDotL, nDotV, alphaRoughness)
	d := DistributionGGX(nDotH, alphaRoughness)
	return f.Mul(vis * d)
}

// DistributionCharlie is the inverted-Gaussian sheen distribution from
// Estevez and Kulla's production cloth model.
func DistributionCharlie(sheenRoughness, nDotH float32) float32 {
	sheenRoughness = max(sheenRoughness, 1e-6)
	alphaG := sheenRoughness * sheenRoughness
	invR := 1 / alphaG
	sin2h := 1 - nDotH*nDotH
	return (2 + invR) * math32.Pow(sin2h, invR*0.5) / (2 * math32.Pi)
}

// VisibilityAshikhmin is the closed-form cloth visibility
// approximation used with the Charlie distribution.
func VisibilityAshikhmin(nDotL, nDotV float32) float32 {
	denom := 4 * (nDotL + nDotV - nDotL*nDotV)
	if denom <= 0 {
		return 0
	}
	return clamp01(1 / denom)
}

// BRDFSpecularSheen is the fabric highlight lobe of the sheen layer.
func BRDFSpecularSheen(sheenColor mgl32.Vec3, sheenRoughness, nDotL, nDotV, nDotH float32) mgl32.Vec3 {
	d := DistributionCharlie(sheenRoughness, nDotH)
	vis := VisibilityAshikhmin(nDotL, nDotV)
	return sheenColor.Mul(d * vis)
}
