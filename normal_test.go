package pbr

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestShadingBasis_VertexTangentFrame(t *testing.T) {
	s := testSample()
	basis := shadingBasis(nil, s, nil)

	if basis.T != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Tangent should be +X, got %v", basis.T)
	}
	if basis.B != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Bitangent should be +Y, got %v", basis.B)
	}
	if basis.Ng != (mgl32.Vec3{0, 0, 1}) || basis.N != basis.Ng {
		t.Errorf("Normal should be +Z with no normal map, got Ng %v N %v", basis.Ng, basis.N)
	}
}

func TestShadingBasis_TangentHandedness(t *testing.T) {
	s := testSample()
	s.Tangent[3] = -1
	basis := shadingBasis(nil, s, nil)

	if basis.B != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("Negative handedness should flip the bitangent, got %v", basis.B)
	}
}

func TestShadingBasis_BackFacingFlips(t *testing.T) {
	s := testSample()
	s.BackFacing = true
	basis := shadingBasis(nil, s, nil)

	if basis.T != (mgl32.Vec3{-1, 0, 0}) ||
		basis.B != (mgl32.Vec3{0, -1, 0}) ||
		basis.Ng != (mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Backfacing sample must flip the whole frame: %+v", basis)
	}
}

func TestShadingBasis_DerivativeTangent(t *testing.T) {
	s := &Sample{
		Normal:     mgl32.Vec3{0, 0, 1},
		HasNormal:  true,
		PositionDX: mgl32.Vec3{1, 0, 0},
		PositionDY: mgl32.Vec3{0, 1, 0},
		UVDX:       mgl32.Vec2{1, 0},
		UVDY:       mgl32.Vec2{0, 1},
	}
	basis := shadingBasis(nil, s, nil)

	if !vecCloseEnough(basis.T, mgl32.Vec3{1, 0, 0}, 1e-6) {
		t.Errorf("Identity UV mapping should recover +X tangent, got %v", basis.T)
	}
	if !vecCloseEnough(basis.B, mgl32.Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("Bitangent should be +Y, got %v", basis.B)
	}
}

func TestShadingBasis_NormalFromDerivatives(t *testing.T) {
	s := &Sample{
		PositionDX: mgl32.Vec3{1, 0, 0},
		PositionDY: mgl32.Vec3{0, 1, 0},
		UVDX:       mgl32.Vec2{1, 0},
		UVDY:       mgl32.Vec2{0, 1},
	}
	basis := shadingBasis(nil, s, nil)

	if !vecCloseEnough(basis.Ng, mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("Geometric normal should come from the position derivatives, got %v", basis.Ng)
	}
}

func TestShadingBasis_DegenerateUVFallback(t *testing.T) {
	s := &Sample{
		Normal:     mgl32.Vec3{0, 0, 1},
		HasNormal:  true,
		PositionDX: mgl32.Vec3{1, 0, 0},
		PositionDY: mgl32.Vec3{0, 1, 0},
		UVDX:       mgl32.Vec2{0.5, 0.5},
		UVDY:       mgl32.Vec2{0.5, 0.5},
	}
	basis := shadingBasis(nil, s, nil)

	if !closeEnough(basis.T.Len(), 1, 1e-6) {
		t.Errorf("Fallback tangent must be unit length, got %v", basis.T)
	}
	if dot := basis.T.Dot(basis.Ng); !closeEnough(dot, 0, 1e-6) {
		t.Errorf("Fallback tangent must be perpendicular to the normal, dot %f", dot)
	}
}

func TestShadingBasis_NormalMap(t *testing.T) {
	store := NewStore(nil)

	// A flat tangent-space normal leaves the shading normal at +Z.
	flat := store.CreateTexture([]uint8{128, 128, 255, 255}, 1, 1, TextureFormatRGBA8Unorm)
	nb := &NormalBinding{TextureBinding: TextureBinding{Texture: flat}, Scale: 1}
	basis := shadingBasis(store, testSample(), nb)
	if basis.N.Dot(mgl32.Vec3{0, 0, 1}) < 0.999 {
		t.Errorf("Flat normal map should keep the normal at +Z, got %v", basis.N)
	}

	// A fully +X texel bends the normal toward the tangent.
	bentTex := store.CreateTexture([]uint8{255, 128, 128, 255}, 1, 1, TextureFormatRGBA8Unorm)
	nb = &NormalBinding{TextureBinding: TextureBinding{Texture: bentTex}, Scale: 1}
	bent := shadingBasis(store, testSample(), nb)
	if bent.N.Dot(bent.T) < 0.9 {
		t.Errorf("Normal should bend toward the tangent, got %v", bent.N)
	}
	if bent.Ng != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Geometric normal must be untouched by the map, got %v", bent.Ng)
	}
	if !closeEnough(bent.N.Len(), 1, 1e-6) {
		t.Errorf("Perturbed normal must stay unit length, got %v", bent.N)
	}
}

func TestClearcoatShadingNormal_DefaultsToGeometric(t *testing.T) {
	store := NewStore(nil)
	bentTex := store.CreateTexture([]uint8{255, 128, 128, 255}, 1, 1, TextureFormatRGBA8Unorm)
	nb := &NormalBinding{TextureBinding: TextureBinding{Texture: bentTex}, Scale: 1}

	s := testSample()
	basis := shadingBasis(store, s, nb)

	// The coat ignores the base layer's perturbed normal.
	ccN := clearcoatShadingNormal(store, s, basis, nil)
	if ccN != basis.Ng {
		t.Errorf("Coat normal without a coat texture must be the geometric normal, got %v", ccN)
	}

	ccBent := clearcoatShadingNormal(store, s, basis, nb)
	if ccBent == basis.Ng {
		t.Error("Coat normal with a coat texture should be perturbed")
	}
}
