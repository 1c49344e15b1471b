package pbr

import "github.com/go-gl/mathgl/mgl32"

// DebugChannel routes one intermediate value to the output instead of
// the composited color. Debug output is written linearly: no tone
// mapping, no transfer function, alpha forced to 1.
type DebugChannel int

const (
	DebugNone DebugChannel = iota
	DebugMetallic
	DebugRoughness
	DebugNormal
	DebugGeometryNormal
	DebugTangent
	DebugBitangent
	DebugBaseColor
	DebugAlbedo
	DebugF0
	DebugEmissive
	DebugOcclusion
	DebugAlpha
	DebugDiffuse
	DebugSpecular
	DebugSheen
	DebugClearcoat
	DebugTransmission
)

// debugColor resolves the requested channel. Direction vectors are
// remapped from [-1,1] to [0,1] for display; scalars broadcast to gray.
func debugColor(ch DebugChannel, m *Material, acc *radiance) mgl32.Vec3 {
	switch ch {
	case DebugMetallic:
		return uniform(m.Metallic)
	case DebugRoughness:
		return uniform(m.PerceptualRoughness)
	case DebugNormal:
		return displayVec(m.Basis.N)
	case DebugGeometryNormal:
		return displayVec(m.Basis.Ng)
	case DebugTangent:
		return displayVec(m.Basis.T)
	case DebugBitangent:
		return displayVec(m.Basis.B)
	case DebugBaseColor:
		return m.BaseColor.Vec3()
	case DebugAlbedo:
		return m.Albedo
	case DebugF0:
		return m.F0
	case DebugEmissive:
		return m.Emissive
	case DebugOcclusion:
		return uniform(m.AO)
	case DebugAlpha:
		return uniform(m.BaseColor[3])
	case DebugDiffuse:
		return acc.diffuse
	case DebugSpecular:
		return acc.specular
	case DebugSheen:
		return acc.sheen
	case DebugClearcoat:
		return acc.clearcoat
	case DebugTransmission:
		return acc.transmission
	default:
		return mgl32.Vec3{}
	}
}

func uniform(x float32) mgl32.Vec3 {
	return mgl32.Vec3{x, x, x}
}

func displayVec(v mgl32.Vec3) mgl32.Vec3 {
	return v.Add(mgl32.Vec3{1, 1, 1}).Mul(0.5)
}
