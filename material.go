package pbr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// dielectricF0 is the normal-incidence reflectance of an IOR 1.5
// dielectric, the glTF default for non-metals.
var dielectricF0 = mgl32.Vec3{0.04, 0.04, 0.04}

type AlphaMode int

const (
	// AlphaOpaque ignores alpha and writes 1.
	AlphaOpaque AlphaMode = iota
	// AlphaMask discards samples whose alpha falls below the cutoff
	// and writes 1 for the rest.
	AlphaMask
	// AlphaBlend passes alpha through for downstream blending.
	AlphaBlend
)

// Workflow selects how reflectance is authored. Exactly one workflow is
// active per material; the interface is sealed to the two variants
// below.
type Workflow interface{ workflow() }

// MetallicRoughness is the core glTF workflow: base color plus scalar
// metallic and perceptual roughness.
type MetallicRoughness struct {
	MetallicFactor  float32
	RoughnessFactor float32

	// Texture packs linear roughness in g and metallic in b; r is
	// reserved for occlusion by the usual packing convention.
	Texture *TextureBinding
}

func (MetallicRoughness) workflow() {}

// SpecularGlossiness is the legacy workflow where f0 and glossiness are
// authored directly.
type SpecularGlossiness struct {
	SpecularFactor   mgl32.Vec3
	GlossinessFactor float32

	// Texture carries specular color in rgb and glossiness in a.
	Texture *TextureBinding
}

func (SpecularGlossiness) workflow() {}

// NormalBinding is a normal texture plus its intensity scale; 1 is
// neutral.
type NormalBinding struct {
	TextureBinding
	Scale float32
}

// OcclusionBinding is an ambient occlusion texture (r channel) plus a
// strength in [0,1]; 0 disables the effect.
type OcclusionBinding struct {
	TextureBinding
	Strength float32
}

// SheenDef enables the fabric highlight layer.
type SheenDef struct {
	ColorFactor     mgl32.Vec3
	RoughnessFactor float32

	// Texture carries sheen color in rgb and sheen roughness in a.
	Texture *TextureBinding
}

// ClearcoatDef enables the thin lacquer layer on top of the base
// material.
type ClearcoatDef struct {
	Factor          float32
	RoughnessFactor float32

	// Texture's r channel scales the factor; RoughnessTexture's g
	// channel scales the roughness.
	Texture          *TextureBinding
	RoughnessTexture *TextureBinding
	NormalTexture    *NormalBinding
}

// TransmissionDef enables light transmission through the surface.
type TransmissionDef struct {
	Factor float32

	// Texture's r channel scales the factor.
	Texture *TextureBinding
}

// MaterialDef is the authored material description. Nil sub-records
// leave their feature off; textures are referenced through Store ids.
type MaterialDef struct {
	Name string

	// BaseColorFactor is the material color and alpha. Under the
	// specular-glossiness workflow it acts as the diffuse factor.
	BaseColorFactor  mgl32.Vec4
	BaseColorTexture *TextureBinding

	// Workflow defaults to MetallicRoughness with factor 1 for both
	// metallic and roughness when nil.
	Workflow Workflow

	NormalTexture    *NormalBinding
	OcclusionTexture *OcclusionBinding

	EmissiveFactor  mgl32.Vec3
	EmissiveTexture *TextureBinding

	AlphaMode   AlphaMode
	AlphaCutoff float32

	Sheen        *SheenDef
	Clearcoat    *ClearcoatDef
	Transmission *TransmissionDef
}

// SheenLayer holds the resolved sheen parameters.
type SheenLayer struct {
	Color     mgl32.Vec3
	Roughness float32
}

// ClearcoatLayer holds the resolved coat parameters including the
// coat's own shading normal.
type ClearcoatLayer struct {
	Factor    float32
	Roughness float32
	F0        mgl32.Vec3
	F90       mgl32.Vec3
	N         mgl32.Vec3
}

// TransmissionLayer holds the resolved transmission parameters.
type TransmissionLayer struct {
	Factor float32
}

// Material is the fully resolved per-sample shading record. Layer
// pointers are non-nil exactly when the corresponding def enabled the
// feature; nothing reads them otherwise.
type Material struct {
	BaseColor mgl32.Vec4

	// Albedo is the diffuse chromaticity left after the metal and
	// specular splits.
	Albedo mgl32.Vec3

	Metallic            float32
	PerceptualRoughness float32
	AlphaRoughness      float32
	F0                  mgl32.Vec3
	F90                 mgl32.Vec3

	Basis NormalBasis

	Emissive mgl32.Vec3

	// AO and OcclusionStrength modulate the environment terms. With no
	// occlusion texture AO is 1 and strength 0, which is the identity.
	AO                float32
	OcclusionStrength float32

	Sheen        *SheenLayer
	Clearcoat    *ClearcoatLayer
	Transmission *TransmissionLayer
}

type resolveCtx struct {
	store *Store
	s     *Sample
	def   *MaterialDef
	basis NormalBasis
}

// resolveMaterial runs the resolver pipeline in its fixed order. Later
// stages read fields written by earlier ones, so the order is part of
// the contract. Texture samples multiply factors unclamped; the single
// clamp happens in finalizeMaterial.
func resolveMaterial(store *Store, s *Sample, def *MaterialDef) Material {
	ctx := resolveCtx{store: store, s: s, def: def}
	ctx.basis = shadingBasis(store, s, def.NormalTexture)

	m := Material{Basis: ctx.basis}
	m = resolveBaseColor(ctx, m)
	m = resolveWorkflow(ctx, m)
	m = resolveSheen(ctx, m)
	m = resolveClearcoat(ctx, m)
	m = resolveTransmission(ctx, m)
	m = resolveSurface(ctx, m)
	return finalizeMaterial(m)
}

func resolveBaseColor(ctx resolveCtx, m Material) Material {
	c := ctx.def.BaseColorFactor
	if ctx.def.BaseColorTexture != nil {
		c = mul4(c, sampleBinding(ctx.store, *ctx.def.BaseColorTexture, ctx.s))
	}
	if ctx.s.HasColor {
		c = mul4(c, ctx.s.Color)
	}
	m.BaseColor = c
	return m
}

func resolveWorkflow(ctx resolveCtx, m Material) Material {
	wf := ctx.def.Workflow
	if wf == nil {
		wf = MetallicRoughness{MetallicFactor: 1, RoughnessFactor: 1}
	}

	switch w := wf.(type) {
	case MetallicRoughness:
		return resolveMetallicRoughness(ctx, m, w)
	case *MetallicRoughness:
		return resolveMetallicRoughness(ctx, m, *w)
	case SpecularGlossiness:
		return resolveSpecularGlossiness(ctx, m, w)
	case *SpecularGlossiness:
		return resolveSpecularGlossiness(ctx, m, *w)
	default:
		panic(fmt.Sprintf("pbr: unknown workflow %T", wf))
	}
}

func resolveMetallicRoughness(ctx resolveCtx, m Material, w MetallicRoughness) Material {
	m.Metallic = w.MetallicFactor
	m.PerceptualRoughness = w.RoughnessFactor
	if w.Texture != nil {
		mr := sampleBinding(ctx.store, *w.Texture, ctx.s)
		m.PerceptualRoughness *= mr[1]
		m.Metallic *= mr[2]
	}

	base := m.BaseColor.Vec3()
	m.Albedo = mix3(base.Mul(1-dielectricF0[0]), mgl32.Vec3{}, m.Metallic)
	m.F0 = mix3(dielectricF0, base, m.Metallic)
	return m
}

func resolveSpecularGlossiness(ctx resolveCtx, m Material, w SpecularGlossiness) Material {
	f0 := w.SpecularFactor
	gloss := w.GlossinessFactor
	if w.Texture != nil {
		sg := sampleBinding(ctx.store, *w.Texture, ctx.s)
		f0 = mul3(f0, sg.Vec3())
		gloss *= sg[3]
	}

	m.F0 = f0
	m.PerceptualRoughness = 1 - gloss
	m.Albedo = m.BaseColor.Vec3().Mul(1 - max3(f0))
	return m
}

func resolveSheen(ctx resolveCtx, m Material) Material {
	def := ctx.def.Sheen
	if def == nil {
		return m
	}

	layer := SheenLayer{
		Color:     def.ColorFactor,
		Roughness: def.RoughnessFactor,
	}
	if def.Texture != nil {
		t := sampleBinding(ctx.store, *def.Texture, ctx.s)
		layer.Color = mul3(layer.Color, t.Vec3())
		layer.Roughness *= t[3]
	}
	m.Sheen = &layer
	return m
}

func resolveClearcoat(ctx resolveCtx, m Material) Material {
	def := ctx.def.Clearcoat
	if def == nil {
		return m
	}

	layer := ClearcoatLayer{
		Factor:    def.Factor,
		Roughness: def.RoughnessFactor,
		F0:        dielectricF0,
		F90:       mgl32.Vec3{1, 1, 1},
	}
	if def.Texture != nil {
		layer.Factor *= sampleBinding(ctx.store, *def.Texture, ctx.s)[0]
	}
	if def.RoughnessTexture != nil {
		layer.Roughness *= sampleBinding(ctx.store, *def.RoughnessTexture, ctx.s)[1]
	}
	layer.Roughness = clamp01(layer.Roughness)
	layer.N = clearcoatShadingNormal(ctx.store, ctx.s, ctx.basis, def.NormalTexture)
	m.Clearcoat = &layer
	return m
}

func resolveTransmission(ctx resolveCtx, m Material) Material {
	def := ctx.def.Transmission
	if def == nil {
		return m
	}

	layer := TransmissionLayer{Factor: def.Factor}
	if def.Texture != nil {
		layer.Factor *= sampleBinding(ctx.store, *def.Texture, ctx.s)[0]
	}
	m.Transmission = &layer
	return m
}

// resolveSurface gathers the emissive and occlusion inputs.
func resolveSurface(ctx resolveCtx, m Material) Material {
	e := ctx.def.EmissiveFactor
	if ctx.def.EmissiveTexture != nil {
		t := sampleBinding(ctx.store, *ctx.def.EmissiveTexture, ctx.s)
		e = mul3(e, t.Vec3())
	}
	m.Emissive = e

	m.AO = 1
	if ctx.def.OcclusionTexture != nil {
		m.AO = sampleBinding(ctx.store, ctx.def.OcclusionTexture.TextureBinding, ctx.s)[0]
		m.OcclusionStrength = ctx.def.OcclusionTexture.Strength
	}
	return m
}

// finalizeMaterial is the single clamp-and-derive pass that runs after
// every resolver stage: roughness and metallic come back into [0,1],
// alpha roughness is the squared perceptual roughness, and f90 boosts
// low reflectance at grazing angles.
func finalizeMaterial(m Material) Material {
	m.PerceptualRoughness = clamp01(m.PerceptualRoughness)
	m.Metallic = clamp01(m.Metallic)
	m.AlphaRoughness = m.PerceptualRoughness * m.PerceptualRoughness

	f90 := clamp01(max3(m.F0) * 50)
	m.F90 = mgl32.Vec3{f90, f90, f90}
	return m
}
