package pbr

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	workflowMetallicRoughness  = "metallic_roughness"
	workflowSpecularGlossiness = "specular_glossiness"
)

// TextureData is the serialized form of a texture binding. Textures are
// referenced by source path so presets stay portable across stores.
type TextureData struct {
	Path  string `json:"path"`
	SRGB  bool   `json:"srgb,omitempty"`
	UVSet int    `json:"uv_set,omitempty"`

	HasTransform bool       `json:"has_transform,omitempty"`
	Offset       mgl32.Vec2 `json:"offset"`
	Scale        mgl32.Vec2 `json:"scale"`
	Rotation     float32    `json:"rotation,omitempty"`
}

// MaterialData is the JSON shape of a material definition. Scalars
// with a non-zero default are pointers so an authored zero survives a
// round trip; the defaults apply only when the key is absent.
type MaterialData struct {
	Name string `json:"name,omitempty"`

	BaseColorFactor  mgl32.Vec4   `json:"base_color_factor"`
	BaseColorTexture *TextureData `json:"base_color_texture,omitempty"`

	Workflow string `json:"workflow,omitempty"`

	MetallicFactor           float32      `json:"metallic_factor"`
	RoughnessFactor          float32      `json:"roughness_factor"`
	MetallicRoughnessTexture *TextureData `json:"metallic_roughness_texture,omitempty"`

	SpecularFactor            mgl32.Vec3   `json:"specular_factor"`
	GlossinessFactor          float32      `json:"glossiness_factor"`
	SpecularGlossinessTexture *TextureData `json:"specular_glossiness_texture,omitempty"`

	NormalTexture *TextureData `json:"normal_texture,omitempty"`
	NormalScale   *float32     `json:"normal_scale,omitempty"`

	OcclusionTexture  *TextureData `json:"occlusion_texture,omitempty"`
	OcclusionStrength *float32     `json:"occlusion_strength,omitempty"`

	EmissiveFactor  mgl32.Vec3   `json:"emissive_factor"`
	EmissiveTexture *TextureData `json:"emissive_texture,omitempty"`

	AlphaMode   string   `json:"alpha_mode,omitempty"`
	AlphaCutoff *float32 `json:"alpha_cutoff,omitempty"`

	HasSheen             bool         `json:"has_sheen,omitempty"`
	SheenColorFactor     mgl32.Vec3   `json:"sheen_color_factor"`
	SheenRoughnessFactor float32      `json:"sheen_roughness_factor,omitempty"`
	SheenTexture         *TextureData `json:"sheen_texture,omitempty"`

	HasClearcoat              bool         `json:"has_clearcoat,omitempty"`
	ClearcoatFactor           float32      `json:"clearcoat_factor,omitempty"`
	ClearcoatRoughness        float32      `json:"clearcoat_roughness,omitempty"`
	ClearcoatTexture          *TextureData `json:"clearcoat_texture,omitempty"`
	ClearcoatRoughnessTexture *TextureData `json:"clearcoat_roughness_texture,omitempty"`
	ClearcoatNormalTexture    *TextureData `json:"clearcoat_normal_texture,omitempty"`
	ClearcoatNormalScale      *float32     `json:"clearcoat_normal_scale,omitempty"`

	HasTransmission     bool         `json:"has_transmission,omitempty"`
	TransmissionFactor  float32      `json:"transmission_factor,omitempty"`
	TransmissionTexture *TextureData `json:"transmission_texture,omitempty"`
}

// SaveMaterialPreset writes def as indented JSON. Only textures that
// were loaded from disk carry a path; procedurally created ones are
// dropped from the preset with a warning.
func SaveMaterialPreset(store *Store, def *MaterialDef, filename string) error {
	data := MaterialData{
		Name:             def.Name,
		BaseColorFactor:  def.BaseColorFactor,
		BaseColorTexture: textureData(store, def.BaseColorTexture),
		EmissiveFactor:   def.EmissiveFactor,
		EmissiveTexture:  textureData(store, def.EmissiveTexture),
	}

	switch w := def.Workflow.(type) {
	case nil:
		data.Workflow = workflowMetallicRoughness
		data.MetallicFactor = 1
		data.RoughnessFactor = 1
	case MetallicRoughness:
		fillMetallicRoughness(store, &data, w)
	case *MetallicRoughness:
		fillMetallicRoughness(store, &data, *w)
	case SpecularGlossiness:
		fillSpecularGlossiness(store, &data, w)
	case *SpecularGlossiness:
		fillSpecularGlossiness(store, &data, *w)
	}

	switch def.AlphaMode {
	case AlphaMask:
		data.AlphaMode = "mask"
		data.AlphaCutoff = &def.AlphaCutoff
	case AlphaBlend:
		data.AlphaMode = "blend"
	default:
		data.AlphaMode = "opaque"
	}

	if def.NormalTexture != nil {
		data.NormalTexture = textureData(store, &def.NormalTexture.TextureBinding)
		data.NormalScale = &def.NormalTexture.Scale
	}
	if def.OcclusionTexture != nil {
		data.OcclusionTexture = textureData(store, &def.OcclusionTexture.TextureBinding)
		data.OcclusionStrength = &def.OcclusionTexture.Strength
	}

	if def.Sheen != nil {
		data.HasSheen = true
		data.SheenColorFactor = def.Sheen.ColorFactor
		data.SheenRoughnessFactor = def.Sheen.RoughnessFactor
		data.SheenTexture = textureData(store, def.Sheen.Texture)
	}
	if def.Clearcoat != nil {
		data.HasClearcoat = true
		data.ClearcoatFactor = def.Clearcoat.Factor
		data.ClearcoatRoughness = def.Clearcoat.RoughnessFactor
		data.ClearcoatTexture = textureData(store, def.Clearcoat.Texture)
		data.ClearcoatRoughnessTexture = textureData(store, def.Clearcoat.RoughnessTexture)
		if def.Clearcoat.NormalTexture != nil {
			data.ClearcoatNormalTexture = textureData(store, &def.Clearcoat.NormalTexture.TextureBinding)
			data.ClearcoatNormalScale = &def.Clearcoat.NormalTexture.Scale
		}
	}
	if def.Transmission != nil {
		data.HasTransmission = true
		data.TransmissionFactor = def.Transmission.Factor
		data.TransmissionTexture = textureData(store, def.Transmission.Texture)
	}

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, bytes, 0644)
}

// LoadMaterialPreset reads a preset and loads every referenced texture
// into the store. Missing optional values take the usual defaults:
// normal scale and occlusion strength 1, mask cutoff 0.5.
func LoadMaterialPreset(store *Store, filename string) (*MaterialDef, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var data MaterialData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, err
	}

	def := &MaterialDef{
		Name:            data.Name,
		BaseColorFactor: data.BaseColorFactor,
		EmissiveFactor:  data.EmissiveFactor,
	}

	if def.BaseColorTexture, err = loadBinding(store, data.BaseColorTexture); err != nil {
		return nil, err
	}
	if def.EmissiveTexture, err = loadBinding(store, data.EmissiveTexture); err != nil {
		return nil, err
	}

	switch data.Workflow {
	case workflowMetallicRoughness, "":
		w := MetallicRoughness{
			MetallicFactor:  data.MetallicFactor,
			RoughnessFactor: data.RoughnessFactor,
		}
		if w.Texture, err = loadBinding(store, data.MetallicRoughnessTexture); err != nil {
			return nil, err
		}
		def.Workflow = w
	case workflowSpecularGlossiness:
		w := SpecularGlossiness{
			SpecularFactor:   data.SpecularFactor,
			GlossinessFactor: data.GlossinessFactor,
		}
		if w.Texture, err = loadBinding(store, data.SpecularGlossinessTexture); err != nil {
			return nil, err
		}
		def.Workflow = w
	default:
		return nil, fmt.Errorf("unknown workflow %q in %s", data.Workflow, filename)
	}

	switch data.AlphaMode {
	case "opaque", "":
		def.AlphaMode = AlphaOpaque
	case "mask":
		def.AlphaMode = AlphaMask
		def.AlphaCutoff = orDefault(data.AlphaCutoff, 0.5)
	case "blend":
		def.AlphaMode = AlphaBlend
	default:
		return nil, fmt.Errorf("unknown alpha mode %q in %s", data.AlphaMode, filename)
	}

	if data.NormalTexture != nil {
		binding, err := loadBinding(store, data.NormalTexture)
		if err != nil {
			return nil, err
		}
		def.NormalTexture = &NormalBinding{
			TextureBinding: *binding,
			Scale:          orDefault(data.NormalScale, 1),
		}
	}
	if data.OcclusionTexture != nil {
		binding, err := loadBinding(store, data.OcclusionTexture)
		if err != nil {
			return nil, err
		}
		def.OcclusionTexture = &OcclusionBinding{
			TextureBinding: *binding,
			Strength:       orDefault(data.OcclusionStrength, 1),
		}
	}

	if data.HasSheen {
		sheen := &SheenDef{
			ColorFactor:     data.SheenColorFactor,
			RoughnessFactor: data.SheenRoughnessFactor,
		}
		if sheen.Texture, err = loadBinding(store, data.SheenTexture); err != nil {
			return nil, err
		}
		def.Sheen = sheen
	}
	if data.HasClearcoat {
		cc := &ClearcoatDef{
			Factor:          data.ClearcoatFactor,
			RoughnessFactor: data.ClearcoatRoughness,
		}
		if cc.Texture, err = loadBinding(store, data.ClearcoatTexture); err != nil {
			return nil, err
		}
		if cc.RoughnessTexture, err = loadBinding(store, data.ClearcoatRoughnessTexture); err != nil {
			return nil, err
		}
		if data.ClearcoatNormalTexture != nil {
			binding, err := loadBinding(store, data.ClearcoatNormalTexture)
			if err != nil {
				return nil, err
			}
			cc.NormalTexture = &NormalBinding{
				TextureBinding: *binding,
				Scale:          orDefault(data.ClearcoatNormalScale, 1),
			}
		}
		def.Clearcoat = cc
	}
	if data.HasTransmission {
		tr := &TransmissionDef{Factor: data.TransmissionFactor}
		if tr.Texture, err = loadBinding(store, data.TransmissionTexture); err != nil {
			return nil, err
		}
		def.Transmission = tr
	}

	return def, nil
}

func fillMetallicRoughness(store *Store, data *MaterialData, w MetallicRoughness) {
	data.Workflow = workflowMetallicRoughness
	data.MetallicFactor = w.MetallicFactor
	data.RoughnessFactor = w.RoughnessFactor
	data.MetallicRoughnessTexture = textureData(store, w.Texture)
}

func fillSpecularGlossiness(store *Store, data *MaterialData, w SpecularGlossiness) {
	data.Workflow = workflowSpecularGlossiness
	data.SpecularFactor = w.SpecularFactor
	data.GlossinessFactor = w.GlossinessFactor
	data.SpecularGlossinessTexture = textureData(store, w.Texture)
}

func textureData(store *Store, b *TextureBinding) *TextureData {
	if b == nil {
		return nil
	}

	tex := store.Texture(b.Texture)
	if tex.source == "" {
		store.log.Warnf("texture %s has no source path, dropping from preset", b.Texture)
		return nil
	}

	d := &TextureData{
		Path:  tex.source,
		SRGB:  tex.format == TextureFormatRGBA8UnormSRGB,
		UVSet: int(b.UV),
	}
	if b.Transform != nil {
		d.HasTransform = true
		d.Offset = b.Transform.Offset
		d.Scale = b.Transform.Scale
		d.Rotation = b.Transform.Rotation
	}
	return d
}

func loadBinding(store *Store, d *TextureData) (*TextureBinding, error) {
	if d == nil {
		return nil, nil
	}

	format := TextureFormatRGBA8Unorm
	if d.SRGB {
		format = TextureFormatRGBA8UnormSRGB
	}
	id, err := store.LoadTexture(d.Path, format)
	if err != nil {
		return nil, err
	}

	b := &TextureBinding{Texture: id, UV: UVSet(d.UVSet)}
	if d.HasTransform {
		b.Transform = &UVTransform{
			Offset:   d.Offset,
			Scale:    d.Scale,
			Rotation: d.Rotation,
		}
	}
	return b, nil
}

func orDefault(p *float32, fallback float32) float32 {
	if p == nil {
		return fallback
	}
	return *p
}
