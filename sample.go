package pbr

import "github.com/go-gl/mathgl/mgl32"

// Sample carries the interpolated vertex attributes for one shaded point.
// Optional attributes are paired with Has* flags so the zero value of the
// attribute itself never has to double as "absent".
type Sample struct {
	// Position of the point in world space.
	Position mgl32.Vec3

	// Normal is the interpolated shading normal. It may arrive
	// unnormalized; reconstruction renormalizes it. When HasNormal is
	// false a screen-space style fallback is derived instead.
	Normal    mgl32.Vec3
	HasNormal bool

	// Tangent is the interpolated tangent in xyz with the bitangent
	// handedness sign in w. Only consulted when HasTangent is set and
	// the material actually needs a tangent basis.
	Tangent    mgl32.Vec4
	HasTangent bool

	// UV and UV1 are the first and second texture coordinate sets.
	// Bindings pick between them per texture.
	UV  mgl32.Vec2
	UV1 mgl32.Vec2

	// PositionDX/PositionDY and UVDX/UVDY are screen-space partial
	// derivatives of Position and UV. They feed the derivative-based
	// basis reconstruction when no tangent (or no normal) is supplied.
	PositionDX mgl32.Vec3
	PositionDY mgl32.Vec3
	UVDX       mgl32.Vec2
	UVDY       mgl32.Vec2

	// FragCoord is the normalized screen position in [0,1]^2. Only the
	// transmission background lookup reads it.
	FragCoord mgl32.Vec2

	// Color is the vertex color, linear RGBA. Multiplied into base
	// color and alpha when HasColor is set.
	Color    mgl32.Vec4
	HasColor bool

	// BackFacing marks points whose geometric front side faces away
	// from the camera; the shading normal is flipped for them.
	BackFacing bool
}

// UVSet selects which Sample coordinate set a texture binding reads.
type UVSet int

const (
	UVSet0 UVSet = iota
	UVSet1
)

func (s *Sample) uv(set UVSet) mgl32.Vec2 {
	if set == UVSet1 {
		return s.UV1
	}
	return s.UV
}
