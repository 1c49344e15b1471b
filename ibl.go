package pbr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// applyIBL adds the environment's contributions to the accumulators.
// It only samples the frame's resources, never mutates them. With no
// environment bound nothing accumulates; transmission additionally
// requires a background buffer.
func applyIBL(f *Frame, m *Material, s *Sample, v mgl32.Vec3, acc *radiance) {
	env := f.Environment
	if env == nil {
		return
	}

	n := m.Basis.N

	acc.diffuse = acc.diffuse.Add(mul3(env.Irradiance(n), m.Albedo))
	acc.specular = acc.specular.Add(iblRadianceGGX(env, n, v, m.PerceptualRoughness, m.F0))

	if m.Sheen != nil {
		acc.sheen = acc.sheen.Add(iblRadianceCharlie(env, n, v, m.Sheen.Roughness, m.Sheen.Color))
		acc.albedoSheenScaling = min(acc.albedoSheenScaling,
			sheenAlbedoScaling(f, m, clampedDot(n, v)))
	}

	if cc := m.Clearcoat; cc != nil {
		acc.clearcoat = acc.clearcoat.Add(iblRadianceGGX(env, cc.N, v, cc.Roughness, cc.F0))
	}

	if m.Transmission != nil && f.Background != nil {
		acc.transmission = acc.transmission.Add(
			iblRadianceTransmission(env, f.Background, s.FragCoord, n, v, m))
	}
}

// iblRadianceGGX looks up prefiltered radiance along the reflection
// vector, with roughness selecting the mip level, and applies the
// split-sum scale and bias.
func iblRadianceGGX(env Environment, n, v mgl32.Vec3, roughness float32, f0 mgl32.Vec3) mgl32.Vec3 {
	r := clamp01(roughness)
	nDotV := clampedDot(n, v)
	lod := r * float32(env.MipCount()-1)
	reflection := safeNormalize(reflect3(v.Mul(-1), n))

	fab := env.BRDF(nDotV, r)
	scale := f0.Mul(fab[0]).Add(mgl32.Vec3{fab[1], fab[1], fab[1]})
	return mul3(env.Radiance(reflection, lod), scale)
}

// iblRadianceCharlie evaluates the sheen lobe against the same
// prefiltered pyramid, weighted by the Charlie directional albedo.
func iblRadianceCharlie(env Environment, n, v mgl32.Vec3, sheenRoughness float32, sheenColor mgl32.Vec3) mgl32.Vec3 {
	r := clamp01(sheenRoughness)
	nDotV := clampedDot(n, v)
	lod := r * float32(env.MipCount()-1)
	reflection := safeNormalize(reflect3(v.Mul(-1), n))

	brdf := env.SheenE(nDotV, r)
	return mul3(env.Radiance(reflection, lod), sheenColor).Mul(brdf)
}

// iblRadianceTransmission pulls the background buffer through the
// surface: blurred by roughness, tinted by base color, and reduced by
// the energy the specular lobe already claimed.
func iblRadianceTransmission(env Environment, bg Background, fragCoord mgl32.Vec2, n, v mgl32.Vec3, m *Material) mgl32.Vec3 {
	nDotV := clampedDot(n, v)
	fab := env.BRDF(nDotV, m.PerceptualRoughness)

	w, _ := bg.Size()
	lod := math32.Log2(max(float32(w), 1)) * m.PerceptualRoughness
	transmitted := bg.SampleBackground(fragCoord, lod)

	specular := m.F0.Mul(fab[0]).Add(m.F90.Mul(fab[1]))
	weight := mgl32.Vec3{1 - specular[0], 1 - specular[1], 1 - specular[2]}
	return mul3(mul3(weight, transmitted), m.BaseColor.Vec3())
}
