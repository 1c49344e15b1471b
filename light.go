package pbr

import "github.com/go-gl/mathgl/mgl32"

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
)

// Light is one punctual light source. The list a Frame carries is
// zero-based and every entry is live; there is no reserved leading
// slot. Direction points from the light into the scene and matters for
// the directional and spot types. Range <= 0 selects pure
// inverse-square falloff. The cone fields are cosines of the spot half
// angles.
type Light struct {
	Type LightType

	Position  mgl32.Vec3
	Direction mgl32.Vec3

	Color     mgl32.Vec3
	Intensity float32

	Range float32

	InnerConeCos float32
	OuterConeCos float32
}

// rangeAttenuation fades a light to zero at its authored range and
// falls back to inverse-square when no range is set. The squared
// distance is floored so a light sitting exactly on the surface cannot
// divide by zero.
func rangeAttenuation(lightRange, dist float32) float32 {
	distSq := max(dist*dist, 1e-8)
	if lightRange <= 0 {
		return 1 / distSq
	}
	f := dist / lightRange
	f2 := f * f
	return max(min(1-f2*f2, 1), 0) / distSq
}

// spotAttenuation ramps between the outer and inner cone cosines.
func spotAttenuation(pointToLight, spotDirection mgl32.Vec3, outerConeCos, innerConeCos float32) float32 {
	actualCos := safeNormalize(spotDirection).Dot(safeNormalize(pointToLight.Mul(-1)))
	if actualCos <= outerConeCos {
		return 0
	}
	if actualCos < innerConeCos {
		return smoothstep(outerConeCos, innerConeCos, actualCos)
	}
	return 1
}

// lightIntensity is the radiant color arriving from l at the shaded
// point. Directional lights carry no falloff of either kind.
func lightIntensity(l *Light, pointToLight mgl32.Vec3) mgl32.Vec3 {
	rangeAtt := float32(1)
	spotAtt := float32(1)

	if l.Type != LightTypeDirectional {
		rangeAtt = rangeAttenuation(l.Range, pointToLight.Len())
	}
	if l.Type == LightTypeSpot {
		spotAtt = spotAttenuation(pointToLight, l.Direction, l.OuterConeCos, l.InnerConeCos)
	}

	return l.Color.Mul(l.Intensity * rangeAtt * spotAtt)
}

// applyPunctualLights walks the frame's lights once, adding every
// light's contributions to the accumulators.
func applyPunctualLights(f *Frame, m *Material, pos, v mgl32.Vec3, acc *radiance) {
	for i := range f.Lights {
		accumulateLight(f, m, &f.Lights[i], pos, v, acc)
	}
}

func accumulateLight(f *Frame, m *Material, l *Light, pos, v mgl32.Vec3, acc *radiance) {
	var pointToLight mgl32.Vec3
	if l.Type == LightTypeDirectional {
		pointToLight = l.Direction.Mul(-1)
	} else {
		pointToLight = l.Position.Sub(pos)
	}

	n := m.Basis.N
	ldir := safeNormalize(pointToLight)
	h := safeNormalize(ldir.Add(v))
	nDotL := clampedDot(n, ldir)
	nDotV := clampedDot(n, v)
	nDotH := clampedDot(n, h)
	vDotH := clampedDot(v, h)

	intensity := lightIntensity(l, pointToLight)

	// Grazing and self-shadowed points get no reflection, but light
	// can still pass through from behind.
	if nDotL > 0 || nDotV > 0 {
		diffuse := BRDFLambertian(m.F0, m.F90, m.Albedo, vDotH)
		acc.diffuse = acc.diffuse.Add(mul3(intensity, diffuse).Mul(nDotL))

		specular := BRDFSpecularGGX(m.F0, m.F90, m.AlphaRoughness, vDotH, nDotL, nDotV, nDotH)
		acc.specular = acc.specular.Add(mul3(intensity, specular).Mul(nDotL))

		if m.Sheen != nil {
			sheen := BRDFSpecularSheen(m.Sheen.Color, m.Sheen.Roughness, nDotL, nDotV, nDotH)
			acc.sheen = acc.sheen.Add(mul3(intensity, sheen).Mul(nDotL))
			acc.albedoSheenScaling = min(acc.albedoSheenScaling,
				sheenAlbedoScaling(f, m, nDotV),
				sheenAlbedoScaling(f, m, nDotL))
		}

		if cc := m.Clearcoat; cc != nil {
			ccNDotL := clampedDot(cc.N, ldir)
			ccNDotV := clampedDot(cc.N, v)
			ccNDotH := clampedDot(cc.N, h)
			lobe := BRDFSpecularGGX(cc.F0, cc.F90, cc.Roughness*cc.Roughness, vDotH, ccNDotL, ccNDotV, ccNDotH)
			acc.clearcoat = acc.clearcoat.Add(mul3(intensity, lobe).Mul(ccNDotL))
		}
	}

	if m.Transmission != nil {
		bt := punctualTransmission(n, v, ldir, m.AlphaRoughness, m.F0, m.F90, m.BaseColor.Vec3())
		acc.transmission = acc.transmission.Add(mul3(intensity, bt))
	}
}

// sheenAlbedoScaling is 1 - max3(sheenColor) * E(cos, roughness). The
// running minimum over view and light angles rescales the base layer so
// the sheen lobe does not stack extra energy on top of it.
func sheenAlbedoScaling(f *Frame, m *Material, cosTheta float32) float32 {
	return 1 - max3(m.Sheen.Color)*f.sheenE(cosTheta, m.Sheen.Roughness)
}

// punctualTransmission evaluates the transmission lobe with the light
// direction mirrored onto the front side of the surface, so the usual
// microfacet terms can model light arriving from behind.
func punctualTransmission(n, v, l mgl32.Vec3, alphaRoughness float32, f0, f90, baseColor mgl32.Vec3) mgl32.Vec3 {
	lMirror := safeNormalize(reflect3(l, n))
	h := safeNormalize(lMirror.Add(v))

	d := DistributionGGX(clampedDot(n, h), alphaRoughness)
	fr := FresnelSchlick(f0, f90, clampedDot(v, h))
	vis := VisibilityGGX(clampedDot(n, lMirror), clampedDot(n, v), alphaRoughness)

	w := mgl32.Vec3{1 - fr[0], 1 - fr[1], 1 - fr[2]}
	return mul3(w, baseColor).Mul(d * vis)
}
