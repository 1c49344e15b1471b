package pbr

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGradientEnvironment_Directions(t *testing.T) {
	env := &GradientEnvironment{
		Zenith:  mgl32.Vec3{0.2, 0.4, 0.9},
		Horizon: mgl32.Vec3{0.6, 0.6, 0.6},
		Ground:  mgl32.Vec3{0.3, 0.2, 0.1},
	}

	if got := env.Radiance(mgl32.Vec3{0, 1, 0}, 0); !vecCloseEnough(got, env.Zenith, 1e-6) {
		t.Errorf("Sharp radiance straight up should be the zenith color, got %v", got)
	}
	if got := env.Radiance(mgl32.Vec3{0, -1, 0}, 0); !vecCloseEnough(got, env.Ground, 1e-6) {
		t.Errorf("Sharp radiance straight down should be the ground color, got %v", got)
	}
	if got := env.Radiance(mgl32.Vec3{1, 0, 0}, 0); !vecCloseEnough(got, env.Horizon, 1e-6) {
		t.Errorf("Sharp radiance at the horizon should be the horizon color, got %v", got)
	}

	avg := env.Zenith.Add(env.Horizon).Add(env.Ground).Mul(1.0 / 3.0)
	roughest := float32(env.MipCount() - 1)
	if got := env.Radiance(mgl32.Vec3{0, 1, 0}, roughest); !vecCloseEnough(got, avg, 1e-6) {
		t.Errorf("Fully rough radiance should collapse to the average, got %v", got)
	}

	wantIrr := mix3(env.Zenith, avg, 0.75)
	if got := env.Irradiance(mgl32.Vec3{0, 1, 0}); !vecCloseEnough(got, wantIrr, 1e-6) {
		t.Errorf("Irradiance should sit between sample and average, got %v want %v", got, wantIrr)
	}
}

func TestEnvBRDFApprox_Bounds(t *testing.T) {
	for _, nDotV := range []float32{0, 0.1, 0.5, 0.9, 1} {
		for _, r := range []float32{0, 0.25, 0.5, 0.75, 1} {
			ab := envBRDFApprox(nDotV, r)
			if ab[0] < 0 || ab[0] > 1 || ab[1] < 0 || ab[1] > 1 {
				t.Errorf("Scale/bias out of range at nDotV=%f r=%f: %v", nDotV, r, ab)
			}
		}
	}

	// A smooth surface seen head-on keeps nearly all of f0 and adds
	// almost no bias.
	ab := envBRDFApprox(1, 0)
	if ab[0] < 0.9 {
		t.Errorf("Smooth head-on scale should be near 1, got %f", ab[0])
	}
	if ab[1] > 0.05 {
		t.Errorf("Smooth head-on bias should be near 0, got %f", ab[1])
	}
}

func TestSheenEApprox_Bounds(t *testing.T) {
	for _, cos := range []float32{0, 0.25, 0.5, 0.75, 1} {
		for _, r := range []float32{0, 0.3, 0.6, 1} {
			e := sheenEApprox(cos, r)
			if e < 0 || e > 1 {
				t.Errorf("Sheen albedo out of range at cos=%f r=%f: %f", cos, r, e)
			}
		}
	}

	if e := sheenEApprox(1, 0); e > 0.01 {
		t.Errorf("Smooth sheen head-on should reflect almost nothing, got %f", e)
	}
	if e := sheenEApprox(0, 1); e < 0.5 {
		t.Errorf("Rough sheen at grazing should reflect strongly, got %f", e)
	}
}

func TestImageEnvironment_UniformSky(t *testing.T) {
	img := uniformImage(64, 32, 128, 128, 128)
	env, err := NewImageEnvironment(img, nil)
	if err != nil {
		t.Fatalf("NewImageEnvironment: %v", err)
	}

	if env.MipCount() < 3 {
		t.Errorf("64x32 should yield several mip levels, got %d", env.MipCount())
	}

	// A uniform sky must stay uniform through the pyramid.
	want := srgbToLinear(128.0 / 255.0)
	dirs := []mgl32.Vec3{{0, 1, 0}, {1, 0, 0}, {0.5, -0.5, 0.7}}
	for _, d := range dirs {
		for lod := float32(0); lod < float32(env.MipCount()); lod++ {
			got := env.Radiance(d, lod)
			if !closeEnough(got[0], want, 0.05) {
				t.Errorf("Radiance(%v, %f) drifted from uniform %f: %v", d, lod, want, got)
			}
		}
		if got := env.Irradiance(d); !closeEnough(got[1], want, 0.05) {
			t.Errorf("Irradiance(%v) drifted from uniform %f: %v", d, want, got)
		}
	}
}

func TestNewImageEnvironment_TooSmall(t *testing.T) {
	if _, err := NewImageEnvironment(uniformImage(2, 1, 0, 0, 0), nil); err == nil {
		t.Error("A 2x1 environment image must be rejected")
	}
}

func TestImageBackground_UniformBuffer(t *testing.T) {
	bg := NewImageBackground(uniformImage(32, 16, 255, 0, 0))

	w, h := bg.Size()
	if w != 32 || h != 16 {
		t.Errorf("Size should report the source dimensions, got %dx%d", w, h)
	}

	got := bg.SampleBackground(mgl32.Vec2{0.5, 0.5}, 0)
	if !closeEnough(got[0], 1, 0.02) || !closeEnough(got[1], 0, 0.02) {
		t.Errorf("Center sample should be red, got %v", got)
	}

	// Out-of-range lods clamp instead of failing.
	far := bg.SampleBackground(mgl32.Vec2{0.5, 0.5}, 100)
	if !closeEnough(far[0], 1, 0.05) {
		t.Errorf("Clamped lod sample should still be red, got %v", far)
	}
}

func TestEquirectUV_Anchors(t *testing.T) {
	up := equirectUV(mgl32.Vec3{0, 1, 0})
	if !closeEnough(up[1], 0, 1e-6) {
		t.Errorf("Straight up should map to v=0, got %v", up)
	}

	down := equirectUV(mgl32.Vec3{0, -1, 0})
	if !closeEnough(down[1], 1, 1e-6) {
		t.Errorf("Straight down should map to v=1, got %v", down)
	}

	posX := equirectUV(mgl32.Vec3{1, 0, 0})
	if !closeEnough(posX[0], 0.5, 1e-6) || !closeEnough(posX[1], 0.5, 1e-6) {
		t.Errorf("+X should map to the image center, got %v", posX)
	}

	posZ := equirectUV(mgl32.Vec3{0, 0, 1})
	if !closeEnough(posZ[0], 0.75, 1e-6) {
		t.Errorf("+Z should map to u=0.75, got %v", posZ)
	}
}

// Helper function
func uniformImage(w, h int, r, g, b uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 255
	}
	return img
}
