package pbr

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// Environment supplies the precomputed image-based lighting inputs: a
// diffuse irradiance source, prefiltered specular radiance with
// roughness-ordered mip levels, and the two integration lookups.
type Environment interface {
	// Irradiance is the cosine-weighted incoming light along n.
	Irradiance(n mgl32.Vec3) mgl32.Vec3

	// Radiance is the prefiltered specular radiance along r at a
	// fractional mip level; 0 is sharpest.
	Radiance(r mgl32.Vec3, lod float32) mgl32.Vec3

	// MipCount is the number of prefiltered levels behind Radiance.
	MipCount() int

	// BRDF is the split-sum lookup keyed by (NdotV, roughness),
	// returning the f0 scale and bias.
	BRDF(nDotV, roughness float32) mgl32.Vec2

	// SheenE is the directional sheen albedo for (cos, roughness),
	// used for sheen energy compensation.
	SheenE(cosTheta, roughness float32) float32
}

// Background supplies already-rendered colors behind the surface being
// shaded, addressed by normalized screen coordinates. Transmission is
// its only consumer.
type Background interface {
	SampleBackground(coord mgl32.Vec2, lod float32) mgl32.Vec3

	// Size is the pixel dimensions of the backing buffer; the lod for
	// a lookup is derived from its width.
	Size() (width, height int)
}

const (
	gradientMips = 6
	maxEnvMips   = 8
)

// GradientEnvironment is a procedural three-stop sky, a lightweight
// stand-in for a captured environment map.
type GradientEnvironment struct {
	Zenith  mgl32.Vec3
	Horizon mgl32.Vec3
	Ground  mgl32.Vec3
}

func (e *GradientEnvironment) sample(dir mgl32.Vec3) mgl32.Vec3 {
	d := safeNormalize(dir)
	if d[1] >= 0 {
		return mix3(e.Horizon, e.Zenith, d[1])
	}
	return mix3(e.Horizon, e.Ground, -d[1])
}

func (e *GradientEnvironment) average() mgl32.Vec3 {
	return e.Zenith.Add(e.Horizon).Add(e.Ground).Mul(1.0 / 3.0)
}

func (e *GradientEnvironment) Irradiance(n mgl32.Vec3) mgl32.Vec3 {
	return mix3(e.sample(n), e.average(), 0.75)
}

func (e *GradientEnvironment) Radiance(r mgl32.Vec3, lod float32) mgl32.Vec3 {
	t := clamp01(lod / (gradientMips - 1))
	return mix3(e.sample(r), e.average(), t)
}

func (e *GradientEnvironment) MipCount() int { return gradientMips }

func (e *GradientEnvironment) BRDF(nDotV, roughness float32) mgl32.Vec2 {
	return envBRDFApprox(nDotV, roughness)
}

func (e *GradientEnvironment) SheenE(cosTheta, roughness float32) float32 {
	return sheenEApprox(cosTheta, roughness)
}

// ImageEnvironment samples an equirectangular sky image. Roughness
// prefiltering is emulated with a blurred mip pyramid; the integration
// lookups use the analytic fits.
type ImageEnvironment struct {
	log  Logger
	mips []*Texture
}

func NewImageEnvironment(img image.Image, log Logger) (*ImageEnvironment, error) {
	if log == nil {
		log = NewNopLogger()
	}

	b := img.Bounds()
	if b.Dx() < 4 || b.Dy() < 2 {
		return nil, fmt.Errorf("environment image %dx%d too small", b.Dx(), b.Dy())
	}

	levels := buildMipChain(img, maxEnvMips)
	mips := make([]*Texture, len(levels))
	for i, lvl := range levels {
		mips[i] = &Texture{
			texels: lvl.Pix,
			width:  uint32(lvl.Bounds().Dx()),
			height: uint32(lvl.Bounds().Dy()),
			format: TextureFormatRGBA8UnormSRGB,
		}
	}

	log.Debugf("environment pyramid: %d levels from %dx%d", len(mips), b.Dx(), b.Dy())
	return &ImageEnvironment{log: log, mips: mips}, nil
}

// LoadImageEnvironment reads an equirectangular PNG from disk.
func LoadImageEnvironment(filename string, log Logger) (*ImageEnvironment, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open environment: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode environment %s: %w", filename, err)
	}

	return NewImageEnvironment(img, log)
}

func (e *ImageEnvironment) Irradiance(n mgl32.Vec3) mgl32.Vec3 {
	return sampleMips(e.mips, safeNormalize(n), float32(len(e.mips)-1))
}

func (e *ImageEnvironment) Radiance(r mgl32.Vec3, lod float32) mgl32.Vec3 {
	return sampleMips(e.mips, safeNormalize(r), lod)
}

func (e *ImageEnvironment) MipCount() int { return len(e.mips) }

func (e *ImageEnvironment) BRDF(nDotV, roughness float32) mgl32.Vec2 {
	return envBRDFApprox(nDotV, roughness)
}

func (e *ImageEnvironment) SheenE(cosTheta, roughness float32) float32 {
	return sheenEApprox(cosTheta, roughness)
}

// ImageBackground adapts a rendered frame (or any image) into the
// screen-space buffer transmission reads through.
type ImageBackground struct {
	mips []*Texture
	w, h int
}

func NewImageBackground(img image.Image) *ImageBackground {
	levels := buildMipChain(img, maxEnvMips)
	mips := make([]*Texture, len(levels))
	for i, lvl := range levels {
		mips[i] = &Texture{
			texels: lvl.Pix,
			width:  uint32(lvl.Bounds().Dx()),
			height: uint32(lvl.Bounds().Dy()),
			format: TextureFormatRGBA8Unorm,
		}
	}
	return &ImageBackground{
		mips: mips,
		w:    img.Bounds().Dx(),
		h:    img.Bounds().Dy(),
	}
}

func (b *ImageBackground) SampleBackground(coord mgl32.Vec2, lod float32) mgl32.Vec3 {
	lod = mgl32.Clamp(lod, 0, float32(len(b.mips)-1))
	lo := int(lod)
	hi := min(lo+1, len(b.mips)-1)
	frac := lod - float32(lo)

	ca := sampleClamped(b.mips[lo], coord)
	cb := sampleClamped(b.mips[hi], coord)
	return mix3(ca, cb, frac)
}

func (b *ImageBackground) Size() (int, int) { return b.w, b.h }

// sampleClamped keeps coordinates half a texel inside the image so the
// repeat-addressing sampler cannot wrap screen-space lookups.
func sampleClamped(t *Texture, uv mgl32.Vec2) mgl32.Vec3 {
	uMin := 0.5 / float32(t.width)
	vMin := 0.5 / float32(t.height)
	uv[0] = mgl32.Clamp(uv[0], uMin, 1-uMin)
	uv[1] = mgl32.Clamp(uv[1], vMin, 1-vMin)
	return t.Sample(uv).Vec3()
}

// buildMipChain halves the image repeatedly, blurring each level, so
// fractional lod selection can stand in for roughness prefiltering.
func buildMipChain(img image.Image, maxLevels int) []*image.RGBA {
	b := img.Bounds()
	base := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(base, image.Point{}, img, b, draw.Src, nil)

	levels := []*image.RGBA{base}
	cur := base
	for len(levels) < maxLevels && cur.Bounds().Dx() > 8 && cur.Bounds().Dy() > 4 {
		next := image.NewRGBA(image.Rect(0, 0, cur.Bounds().Dx()/2, cur.Bounds().Dy()/2))
		draw.CatmullRom.Scale(next, next.Bounds(), cur, cur.Bounds(), draw.Src, nil)
		next = blur.Gaussian(next, 2)
		levels = append(levels, next)
		cur = next
	}
	return levels
}

// equirectUV maps a unit direction to equirectangular coordinates.
func equirectUV(d mgl32.Vec3) mgl32.Vec2 {
	u := math32.Atan2(d[2], d[0])/(2*math32.Pi) + 0.5
	v := math32.Acos(mgl32.Clamp(d[1], -1, 1)) / math32.Pi
	return mgl32.Vec2{u, v}
}

func sampleMips(mips []*Texture, dir mgl32.Vec3, lod float32) mgl32.Vec3 {
	lod = mgl32.Clamp(lod, 0, float32(len(mips)-1))
	lo := int(lod)
	hi := min(lo+1, len(mips)-1)
	frac := lod - float32(lo)

	uv := equirectUV(dir)
	a := sampleClamped(mips[lo], uv)
	b := sampleClamped(mips[hi], uv)
	return mix3(a, b, frac)
}

// envBRDFApprox is Karis' mobile fit of the split-sum GGX lookup,
// standing in for a numerically integrated table.
func envBRDFApprox(nDotV, roughness float32) mgl32.Vec2 {
	r := mgl32.Vec4{-1, -0.0275, -0.572, 0.022}.Mul(roughness).
		Add(mgl32.Vec4{1, 0.0425, 1.04, -0.04})
	a004 := min(r[0]*r[0], math32.Exp2(-9.28*nDotV))*r[0] + r[1]
	return mgl32.Vec2{
		clamp01(-1.04*a004 + r[2]),
		clamp01(1.04*a004 + r[3]),
	}
}

// sheenEApprox fits the Charlie directional albedo from Estevez and
// Kulla's cloth model.
func sheenEApprox(cosTheta, roughness float32) float32 {
	c := 1 - clamp01(cosTheta)
	c3 := c * c * c
	e := 0.65584461*c3 + 1/(4.16526551+math32.Exp(-7.97291361*math32.Sqrt(clamp01(roughness))+6.33516894))
	return clamp01(e)
}
