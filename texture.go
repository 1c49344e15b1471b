package pbr

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type TextureId string

// TextureFormat describes how texel bytes decode to shading values.
// The SRGB format applies the transfer function to rgb on sampling;
// alpha is always linear.
type TextureFormat uint32

const (
	TextureFormatRGBA8Unorm TextureFormat = iota
	TextureFormatRGBA8UnormSRGB
)

// Texture is an RGBA8 texel grid sampled bilinearly with repeat
// addressing. Color textures (base color, emissive, sheen color,
// specular-glossiness diffuse/specular) should be registered as SRGB;
// data textures (normal, metallic-roughness, occlusion, clearcoat,
// transmission) as plain Unorm.
type Texture struct {
	texels []uint8
	width  uint32
	height uint32
	format TextureFormat

	// source is the file the texture was loaded from, when any;
	// presets serialize textures by this path.
	source string
}

func (t *Texture) Width() uint32  { return t.width }
func (t *Texture) Height() uint32 { return t.height }

// texelAt decodes one texel with repeat wrapping on both axes.
func (t *Texture) texelAt(x, y int) mgl32.Vec4 {
	w, h := int(t.width), int(t.height)
	x = ((x % w) + w) % w
	y = ((y % h) + h) % h

	i := (y*w + x) * 4
	c := mgl32.Vec4{
		float32(t.texels[i+0]) / 255,
		float32(t.texels[i+1]) / 255,
		float32(t.texels[i+2]) / 255,
		float32(t.texels[i+3]) / 255,
	}
	if t.format == TextureFormatRGBA8UnormSRGB {
		c[0] = srgbToLinear(c[0])
		c[1] = srgbToLinear(c[1])
		c[2] = srgbToLinear(c[2])
	}
	return c
}

// Sample filters the texture bilinearly at uv. Coordinates outside
// [0,1] repeat.
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	fx := uv[0]*float32(t.width) - 0.5
	fy := uv[1]*float32(t.height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	c00 := t.texelAt(x0, y0)
	c10 := t.texelAt(x0+1, y0)
	c01 := t.texelAt(x0, y0+1)
	c11 := t.texelAt(x0+1, y0+1)

	top := c00.Add(c10.Sub(c00).Mul(dx))
	bot := c01.Add(c11.Sub(c01).Mul(dx))
	return top.Add(bot.Sub(top).Mul(dy))
}

// Store owns every texture a frame can reference. Bindings address
// textures by id so material definitions stay plain values.
type Store struct {
	log      Logger
	textures map[TextureId]*Texture
}

func NewStore(log Logger) *Store {
	if log == nil {
		log = NewNopLogger()
	}
	return &Store{
		log:      log,
		textures: make(map[TextureId]*Texture),
	}
}

// CreateTexture registers raw RGBA8 texels. The slice is retained, not
// copied; callers must not mutate it afterwards.
func (st *Store) CreateTexture(texels []uint8, texWidth, texHeight uint32, format TextureFormat) TextureId {
	if uint32(len(texels)) < texWidth*texHeight*4 {
		panic(fmt.Sprintf("pbr: texture data %d bytes, need %d", len(texels), texWidth*texHeight*4))
	}

	id := makeTextureId()
	st.textures[id] = &Texture{
		texels: texels,
		width:  texWidth,
		height: texHeight,
		format: format,
	}

	st.log.Debugf("registered %dx%d texture %s", texWidth, texHeight, id)
	return id
}

// RegisterImage converts any image.Image to RGBA8 and registers it.
func (st *Store) RegisterImage(img image.Image, format TextureFormat) TextureId {
	bounds := img.Bounds()

	rgbaImg, ok := img.(*image.RGBA)
	if !ok {
		rgbaImg = image.NewRGBA(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				rgbaImg.Set(x, y, img.At(x, y))
			}
		}
	}

	return st.CreateTexture(
		rgbaImg.Pix,
		uint32(bounds.Dx()),
		uint32(bounds.Dy()),
		format,
	)
}

// LoadTexture reads a PNG from disk and registers it.
func (st *Store) LoadTexture(filename string, format TextureFormat) (TextureId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open texture: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", filename, err)
	}

	id := st.RegisterImage(img, format)
	st.textures[id].source = filename
	return id, nil
}

// Texture resolves an id. Unknown ids are API misuse.
func (st *Store) Texture(id TextureId) *Texture {
	tex, ok := st.textures[id]
	if !ok {
		panic(fmt.Sprintf("pbr: unknown texture id %q", id))
	}
	return tex
}

func makeTextureId() TextureId {
	return TextureId(uuid.NewString())
}

// UVTransform remaps texture coordinates before sampling, in
// scale-then-rotate-then-offset order.
type UVTransform struct {
	Offset   mgl32.Vec2
	Scale    mgl32.Vec2
	Rotation float32
}

func (tr UVTransform) Apply(uv mgl32.Vec2) mgl32.Vec2 {
	c := math32.Cos(tr.Rotation)
	s := math32.Sin(tr.Rotation)
	return mgl32.Vec2{
		c*tr.Scale[0]*uv[0] - s*tr.Scale[1]*uv[1] + tr.Offset[0],
		s*tr.Scale[0]*uv[0] + c*tr.Scale[1]*uv[1] + tr.Offset[1],
	}
}

// IdentityUVTransform leaves coordinates unchanged.
func IdentityUVTransform() UVTransform {
	return UVTransform{Scale: mgl32.Vec2{1, 1}}
}

// TextureBinding attaches a stored texture to a material slot together
// with the UV set it reads and an optional coordinate transform.
type TextureBinding struct {
	Texture   TextureId
	UV        UVSet
	Transform *UVTransform
}

// sampleBinding fetches the texel for one binding at the sample's
// coordinates.
func sampleBinding(store *Store, b TextureBinding, s *Sample) mgl32.Vec4 {
	uv := s.uv(b.UV)
	if b.Transform != nil {
		uv = b.Transform.Apply(uv)
	}
	return store.Texture(b.Texture).Sample(uv)
}
