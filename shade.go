package pbr

import "github.com/go-gl/mathgl/mgl32"

// Frame is the per-frame shading context: everything shared by every
// sample of a frame. It is read-only while shading runs, which is what
// makes Shade safe to call from any number of goroutines.
type Frame struct {
	// CameraPosition in world space; the view vector is derived from
	// it per sample.
	CameraPosition mgl32.Vec3

	// Lights is zero-based and every entry is live; there is no
	// reserved leading slot. An empty list disables punctual lighting.
	Lights []Light

	// Environment enables image-based lighting when non-nil.
	Environment Environment

	// Background feeds the transmission lookup when non-nil. Without
	// it transmissive materials receive no environment transmission.
	Background Background

	// Exposure scales radiance before tone mapping; zero or negative
	// is treated as 1.
	Exposure float32

	ToneMap ToneMap

	// Debug, when not DebugNone, replaces the composited output with
	// one raw intermediate.
	Debug DebugChannel
}

// sheenE resolves the sheen energy lookup: the environment's table when
// one is bound, the analytic fit otherwise.
func (f *Frame) sheenE(cosTheta, roughness float32) float32 {
	if f.Environment != nil {
		return f.Environment.SheenE(cosTheta, roughness)
	}
	return sheenEApprox(cosTheta, roughness)
}

// radiance collects the independent accumulation terms. One instance
// lives per Shade call and never escapes it.
type radiance struct {
	diffuse      mgl32.Vec3
	specular     mgl32.Vec3
	sheen        mgl32.Vec3
	clearcoat    mgl32.Vec3
	transmission mgl32.Vec3

	// albedoSheenScaling is the running minimum of the sheen energy
	// compensation lookups; it stays 1 without a sheen layer.
	albedoSheenScaling float32
}

// Shader evaluates materials against one frame's context. Store may be
// nil when no material binds a texture.
type Shader struct {
	Store *Store
	Frame *Frame
}

// Shade computes the final RGBA color of one sample, or reports a
// discard (second return false) when mask-mode alpha cutoff rejects it.
// Identical inputs always produce identical outputs.
func (sh *Shader) Shade(s *Sample, def *MaterialDef) (mgl32.Vec4, bool) {
	m := resolveMaterial(sh.Store, s, def)
	v := safeNormalize(sh.Frame.CameraPosition.Sub(s.Position))

	// Mask rejection happens before any output path, so a masked-out
	// sample discards in debug mode too.
	alpha := m.BaseColor[3]
	switch def.AlphaMode {
	case AlphaMask:
		if alpha < def.AlphaCutoff {
			return mgl32.Vec4{}, false
		}
		alpha = 1
	case AlphaOpaque:
		alpha = 1
	}

	acc := radiance{albedoSheenScaling: 1}
	applyIBL(sh.Frame, &m, s, v, &acc)
	applyOcclusion(&m, &acc)
	applyPunctualLights(sh.Frame, &m, s.Position, v, &acc)

	if sh.Frame.Debug != DebugNone {
		return debugColor(sh.Frame.Debug, &m, &acc).Vec4(1), true
	}

	color := composite(&m, v, &acc)

	exposure := sh.Frame.Exposure
	if exposure <= 0 {
		exposure = 1
	}
	out := toneMap(color, sh.Frame.ToneMap, exposure)
	return out.Vec4(alpha), true
}

// applyOcclusion attenuates the environment terms by sampled ambient
// occlusion. It runs between IBL and punctual accumulation so direct
// light stays unoccluded.
func applyOcclusion(m *Material, acc *radiance) {
	if m.OcclusionStrength == 0 {
		return
	}
	acc.diffuse = occlude(acc.diffuse, m.AO, m.OcclusionStrength)
	acc.specular = occlude(acc.specular, m.AO, m.OcclusionStrength)
	acc.sheen = occlude(acc.sheen, m.AO, m.OcclusionStrength)
	acc.clearcoat = occlude(acc.clearcoat, m.AO, m.OcclusionStrength)
}

func occlude(term mgl32.Vec3, ao, strength float32) mgl32.Vec3 {
	return mix3(term, term.Mul(ao), strength)
}

// composite merges the accumulated terms. The order is fixed and not
// commutative: coat scaling wraps everything, sheen scaling wraps the
// base layer, and transmission replaces diffuse rather than adding to
// it.
func composite(m *Material, v mgl32.Vec3, acc *radiance) mgl32.Vec3 {
	var (
		ccFresnel  mgl32.Vec3
		ccRadiance mgl32.Vec3
		ccFactor   float32
	)
	if cc := m.Clearcoat; cc != nil {
		ccFresnel = FresnelSchlick(cc.F0, cc.F90, clampedDot(cc.N, v))
		ccRadiance = acc.clearcoat.Mul(cc.Factor)
		ccFactor = cc.Factor
	}

	diffuse := acc.diffuse
	if m.Transmission != nil {
		diffuse = mix3(diffuse, acc.transmission, m.Transmission.Factor)
	}

	color := m.Emissive.Add(diffuse).Add(acc.specular)
	color = acc.sheen.Add(color.Mul(acc.albedoSheenScaling))

	coat := mgl32.Vec3{
		1 - ccFactor*ccFresnel[0],
		1 - ccFactor*ccFresnel[1],
		1 - ccFactor*ccFresnel[2],
	}
	return mul3(color, coat).Add(ccRadiance)
}
