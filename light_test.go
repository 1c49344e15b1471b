package pbr

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLightIntensity_DirectionalIgnoresDistance(t *testing.T) {
	l := &Light{
		Type:      LightTypeDirectional,
		Direction: mgl32.Vec3{0, 0, -1},
		Color:     mgl32.Vec3{1, 0.5, 0.25},
		Intensity: 3,
		Range:     2, // must be ignored for directional lights
	}

	near := lightIntensity(l, mgl32.Vec3{0, 0, 0.1}) // pointToLight just off the surface
	far := lightIntensity(l, mgl32.Vec3{0, 0, 1000}) // and very far away

	want := l.Color.Mul(3)
	if near != want || far != want {
		t.Errorf("Directional attenuation must be exactly 1: near %v, far %v, want %v", near, far, want)
	}
}

func TestRangeAttenuation_InverseSquare(t *testing.T) {
	// Range <= 0 means unbounded.
	if got := rangeAttenuation(0, 2); !closeEnough(got, 0.25, 1e-6) {
		t.Errorf("Unbounded attenuation at distance 2 should be 0.25, got %f", got)
	}
	if got := rangeAttenuation(-1, 4); !closeEnough(got, 1.0/16.0, 1e-6) {
		t.Errorf("Unbounded attenuation at distance 4 should be 1/16, got %f", got)
	}
}

func TestRangeAttenuation_ZeroAtRange(t *testing.T) {
	if got := rangeAttenuation(5, 5); got != 0 {
		t.Errorf("Attenuation at the declared range must be 0, got %f", got)
	}
	if got := rangeAttenuation(5, 10); got != 0 {
		t.Errorf("Attenuation past the declared range must be 0, got %f", got)
	}

	// Inside the range the inverse-square falloff is scaled smoothly.
	got := rangeAttenuation(5, 2.5)
	want := float32((1 - 0.0625) / (2.5 * 2.5))
	if !closeEnough(got, want, 1e-6) {
		t.Errorf("Attenuation at half range should be %f, got %f", want, got)
	}
}

func TestRangeAttenuation_NoDivisionByZero(t *testing.T) {
	got := rangeAttenuation(0, 0)
	if got != got { // NaN check without importing math
		t.Error("Attenuation at zero distance must not be NaN")
	}
}

func TestSpotAttenuation_Cone(t *testing.T) {
	spotDir := mgl32.Vec3{0, 0, -1}
	inner := float32(0.9)
	outer := float32(0.8)

	// Dead center.
	if got := spotAttenuation(mgl32.Vec3{0, 0, 2}, spotDir, outer, inner); got != 1 {
		t.Errorf("Attenuation on the spot axis should be 1, got %f", got)
	}

	// Far outside the outer cone.
	if got := spotAttenuation(mgl32.Vec3{-5, 0, 1}, spotDir, outer, inner); got != 0 {
		t.Errorf("Attenuation outside the cone should be 0, got %f", got)
	}

	// Between the cones: 2/sqrt(5) ~ 0.894 sits inside the ramp.
	got := spotAttenuation(mgl32.Vec3{-1, 0, 2}, spotDir, outer, inner)
	if got <= 0 || got >= 1 {
		t.Errorf("Attenuation in the transition band should be in (0,1), got %f", got)
	}
}

func TestAccumulateLight_BackfacingOnlyTransmits(t *testing.T) {
	m := &Material{
		BaseColor:      mgl32.Vec4{1, 1, 1, 1},
		Albedo:         mgl32.Vec3{0.5, 0.5, 0.5},
		AlphaRoughness: 0.25,
		F0:             dielectricF0,
		F90:            mgl32.Vec3{1, 1, 1},
		Basis: NormalBasis{
			T: mgl32.Vec3{1, 0, 0}, B: mgl32.Vec3{0, 1, 0},
			Ng: mgl32.Vec3{0, 0, 1}, N: mgl32.Vec3{0, 0, 1},
		},
		Transmission: &TransmissionLayer{Factor: 1},
	}

	// View from behind the surface, light behind it too.
	v := mgl32.Vec3{0, 0, -1}
	light := &Light{
		Type:      LightTypeDirectional,
		Direction: mgl32.Vec3{0.3, 0, 1},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
	}

	f := &Frame{}
	acc := radiance{albedoSheenScaling: 1}
	accumulateLight(f, m, light, mgl32.Vec3{}, v, &acc)

	if acc.diffuse != (mgl32.Vec3{}) || acc.specular != (mgl32.Vec3{}) {
		t.Errorf("Backfacing light must not reflect: diffuse %v, specular %v", acc.diffuse, acc.specular)
	}
	if acc.transmission[0] <= 0 {
		t.Errorf("Backfacing light should still transmit, got %v", acc.transmission)
	}

	// Without a transmission layer nothing at all accumulates.
	m.Transmission = nil
	acc = radiance{albedoSheenScaling: 1}
	accumulateLight(f, m, light, mgl32.Vec3{}, v, &acc)
	if acc.transmission != (mgl32.Vec3{}) {
		t.Errorf("No transmission layer, no transmission term, got %v", acc.transmission)
	}
}

func TestShade_DirectionalDiffuseMatchesLambert(t *testing.T) {
	def := &MaterialDef{
		BaseColorFactor: mgl32.Vec4{0.5, 0.5, 0.5, 1},
		Workflow:        MetallicRoughness{MetallicFactor: 0, RoughnessFactor: 0.5},
	}
	frame := &Frame{
		CameraPosition: mgl32.Vec3{0, 0, 5},
		Lights: []Light{{
			Type:      LightTypeDirectional,
			Direction: mgl32.Vec3{0, 0, -1},
			Color:     mgl32.Vec3{1, 1, 1},
			Intensity: 1,
		}},
		Debug: DebugDiffuse,
	}
	sh := &Shader{Frame: frame}

	out, ok := sh.Shade(testSample(), def)
	if !ok {
		t.Fatal("Sample should not be discarded")
	}

	// albedo/pi * (1 - F(1.0)) at normal incidence, NdotL = 1.
	albedo := float32(0.5 * 0.96)
	want := albedo / 3.14159265 * 0.96
	if !closeEnough(out[0], want, 1e-4) {
		t.Errorf("Diffuse at normal incidence should be %f, got %f", want, out[0])
	}

	frame.Debug = DebugSpecular
	specular, _ := sh.Shade(testSample(), def)
	if specular[0] <= 0 || specular[0] > 1 {
		t.Errorf("Specular term should be nonzero and bounded by the light intensity, got %f", specular[0])
	}
}

func TestShade_RadianceLinearInIntensity(t *testing.T) {
	def := &MaterialDef{
		BaseColorFactor: mgl32.Vec4{0.5, 0.5, 0.5, 1},
		Workflow:        MetallicRoughness{MetallicFactor: 0, RoughnessFactor: 0.5},
	}
	mkFrame := func(intensity float32, ch DebugChannel) *Frame {
		return &Frame{
			CameraPosition: mgl32.Vec3{0, 0, 5},
			Lights: []Light{{
				Type:      LightTypeDirectional,
				Direction: mgl32.Vec3{0, 0, -1},
				Color:     mgl32.Vec3{1, 1, 1},
				Intensity: intensity,
			}},
			Debug: ch,
		}
	}

	for _, ch := range []DebugChannel{DebugDiffuse, DebugSpecular} {
		one, _ := (&Shader{Frame: mkFrame(1, ch)}).Shade(testSample(), def)
		two, _ := (&Shader{Frame: mkFrame(2, ch)}).Shade(testSample(), def)

		for i := 0; i < 3; i++ {
			if !closeEnough(two[i], 2*one[i], 1e-6) {
				t.Errorf("Doubling intensity must double the radiance term: %v vs %v", one, two)
			}
		}
	}
}
