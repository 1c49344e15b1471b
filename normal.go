package pbr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NormalBasis is the orthonormal shading frame for one sample: tangent,
// bitangent, geometric normal, and the final shading normal after any
// normal map has been applied.
type NormalBasis struct {
	T  mgl32.Vec3
	B  mgl32.Vec3
	Ng mgl32.Vec3
	N  mgl32.Vec3
}

// shadingBasis reconstructs the tangent frame. Vertex-supplied bases
// are renormalized because interpolation denormalizes them; otherwise
// the tangent comes from the UV/position derivative solve with a
// perpendicular-axis fallback for degenerate UVs.
func shadingBasis(store *Store, s *Sample, nb *NormalBinding) NormalBasis {
	var t, b, ng mgl32.Vec3

	if s.HasNormal && s.HasTangent {
		ng = safeNormalize(s.Normal)
		t = safeNormalize(mgl32.Vec3{s.Tangent[0], s.Tangent[1], s.Tangent[2]})
		b = safeNormalize(ng.Cross(t).Mul(s.Tangent[3]))
	} else {
		if s.HasNormal {
			ng = safeNormalize(s.Normal)
		} else {
			ng = safeNormalize(s.PositionDX.Cross(s.PositionDY))
		}
		t = derivativeTangent(s, ng)
		b = ng.Cross(t)
	}

	if s.BackFacing {
		t = t.Mul(-1)
		b = b.Mul(-1)
		ng = ng.Mul(-1)
	}

	basis := NormalBasis{T: t, B: b, Ng: ng, N: ng}
	if nb != nil {
		basis.N = applyNormalMap(store, s, basis, nb)
	}
	return basis
}

// derivativeTangent solves the 2x2 system relating UV derivatives to
// position derivatives, then orthogonalizes against ng.
func derivativeTangent(s *Sample, ng mgl32.Vec3) mgl32.Vec3 {
	uvDX, uvDY := s.UVDX, s.UVDY
	if uvDX.Len() <= 1e-2 {
		uvDX = mgl32.Vec2{1, 0}
	}
	if uvDY.Len() <= 1e-2 {
		uvDY = mgl32.Vec2{0, 1}
	}

	det := uvDX[0]*uvDY[1] - uvDY[0]*uvDX[1]
	if math32.Abs(det) < 1e-8 {
		return perpendicular(ng)
	}

	raw := s.PositionDX.Mul(uvDY[1]).Sub(s.PositionDY.Mul(uvDX[1])).Mul(1 / det)
	t := raw.Sub(ng.Mul(ng.Dot(raw)))
	if t.LenSqr() < 1e-12 {
		return perpendicular(ng)
	}
	return t.Normalize()
}

// perpendicular returns a deterministic unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return safeNormalize(n.Cross(axis))
}

// applyNormalMap perturbs the basis normal by a tangent-space normal
// texture: decode [0,1] to [-1,1], scale x/y, renormalize, then rotate
// into world space through the TBN frame.
func applyNormalMap(store *Store, s *Sample, basis NormalBasis, nb *NormalBinding) mgl32.Vec3 {
	texel := sampleBinding(store, nb.TextureBinding, s)
	n := mgl32.Vec3{
		(texel[0]*2 - 1) * nb.Scale,
		(texel[1]*2 - 1) * nb.Scale,
		texel[2]*2 - 1,
	}
	n = safeNormalize(n)

	world := basis.T.Mul(n[0]).
		Add(basis.B.Mul(n[1])).
		Add(basis.Ng.Mul(n[2]))
	return safeNormalize(world)
}

// clearcoatShadingNormal derives the coat layer's own normal. Without a
// dedicated coat normal texture the coat follows the geometric normal
// rather than the base shading normal.
func clearcoatShadingNormal(store *Store, s *Sample, basis NormalBasis, nb *NormalBinding) mgl32.Vec3 {
	if nb == nil {
		return basis.Ng
	}
	return applyNormalMap(store, s, basis, nb)
}
