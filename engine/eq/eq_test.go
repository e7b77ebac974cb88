package eq

import (
	"errors"
	"math"
	"testing"

	"github.com/artur0sky/sonantica-sub003/engine/stage"
)

func testContext() stage.Context {
	return stage.Context{SampleRate: 44100, Channels: 2, BlockSize: 512}
}

func validBand(id string) Band {
	return Band{ID: id, Shape: ShapePeaking, FrequencyHz: 1000, GainDB: 6, Q: 1, Enabled: true}
}

func TestShape_ParseRoundTrip(t *testing.T) {
	for s, name := range shapeNames {
		parsed, err := ParseShape(name)
		if err != nil {
			t.Fatalf("ParseShape(%q): %v", name, err)
		}

		if parsed != s {
			t.Fatalf("ParseShape(%q) = %v, want %v", name, parsed, s)
		}

		if s.String() != name {
			t.Fatalf("String() = %q, want %q", s.String(), name)
		}
	}

	if _, err := ParseShape("bandstop"); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("ParseShape(bandstop) err = %v, want ErrUnknownShape", err)
	}
}

func TestShape_HasGain(t *testing.T) {
	withGain := []Shape{ShapePeaking, ShapeLowShelf, ShapeHighShelf}
	withoutGain := []Shape{ShapeLowPass, ShapeHighPass, ShapeNotch, ShapeAllPass}

	for _, s := range withGain {
		if !s.HasGain() {
			t.Errorf("%v.HasGain() = false, want true", s)
		}
	}

	for _, s := range withoutGain {
		if s.HasGain() {
			t.Errorf("%v.HasGain() = true, want false", s)
		}
	}
}

func TestBand_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Band)
		wantErr error
	}{
		{"valid", func(b *Band) {}, nil},
		{"freq too low", func(b *Band) { b.FrequencyHz = 19 }, ErrInvalidBand},
		{"freq too high", func(b *Band) { b.FrequencyHz = 20001 }, ErrInvalidBand},
		{"q too low", func(b *Band) { b.Q = 0.05 }, ErrInvalidBand},
		{"q too high", func(b *Band) { b.Q = 21 }, ErrInvalidBand},
		{"gain too low", func(b *Band) { b.GainDB = -30 }, ErrInvalidBand},
		{"gain too high", func(b *Band) { b.GainDB = 30 }, ErrInvalidBand},
		{"nan freq", func(b *Band) { b.FrequencyHz = math.NaN() }, ErrInvalidBand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBand("b0")
			tc.mutate(&b)

			err := b.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}

				return
			}

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestBand_Clamped(t *testing.T) {
	b := Band{Shape: ShapePeaking, FrequencyHz: 50000, GainDB: 100, Q: 0}
	c := b.Clamped()

	if c.FrequencyHz != MaxFrequencyHz || c.GainDB != MaxGainDB || c.Q != MinQ {
		t.Fatalf("Clamped() = %+v", c)
	}
}

func TestValidateBands_CountLimit(t *testing.T) {
	bands := make([]Band, MaxBands+1)
	for i := range bands {
		bands[i] = validBand("b")
	}

	if err := ValidateBands(bands); !errors.Is(err, ErrTooManyBands) {
		t.Fatalf("ValidateBands = %v, want ErrTooManyBands", err)
	}

	if err := ValidateBands(bands[:MaxBands]); err != nil {
		t.Fatalf("ValidateBands at limit = %v, want nil", err)
	}
}

func TestBuild_SkipsDisabledBands(t *testing.T) {
	bands := []Band{
		validBand("a"),
		{ID: "b", Shape: ShapePeaking, FrequencyHz: 2000, GainDB: 3, Q: 1, Enabled: false},
		validBand("c"),
	}

	stages := Build(testContext(), bands)
	if len(stages) != 2 {
		t.Fatalf("Build created %d stages, want 2", len(stages))
	}
}

func TestBuild_EmptyIsIdentity(t *testing.T) {
	if stages := Build(testContext(), nil); stages != nil {
		t.Fatalf("Build(nil) = %d stages, want none", len(stages))
	}
}

func TestBuild_FlatBandsPassSignalThrough(t *testing.T) {
	// Peaking bands at 0 dB are identity within rounding error.
	bands := []Band{
		{ID: "a", Shape: ShapePeaking, FrequencyHz: 100, GainDB: 0, Q: 1, Enabled: true},
		{ID: "b", Shape: ShapePeaking, FrequencyHz: 1000, GainDB: 0, Q: 1, Enabled: true},
	}

	stages := Build(testContext(), bands)

	block := [][]float64{make([]float64, 64), make([]float64, 64)}
	for i := range block[0] {
		v := math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
		block[0][i] = v
		block[1][i] = v
	}

	want := make([]float64, 64)
	copy(want, block[0])

	for _, s := range stages {
		s.Process(block)
	}

	for i := range want {
		if math.Abs(block[0][i]-want[i]) > 1e-9 {
			t.Fatalf("sample %d changed by flat EQ: %f vs %f", i, block[0][i], want[i])
		}
	}
}

func TestResponseDB_PeakingBoostAtCenter(t *testing.T) {
	bands := []Band{{ID: "a", Shape: ShapePeaking, FrequencyHz: 1000, GainDB: 6, Q: 1, Enabled: true}}

	resp := ResponseDB(bands, []float64{1000, 20, 18000}, 44100)

	if math.Abs(resp[0]-6) > 0.5 {
		t.Fatalf("response at center = %f dB, want ~6", resp[0])
	}

	if math.Abs(resp[1]) > 1 || math.Abs(resp[2]) > 1 {
		t.Fatalf("response far from center = %f / %f dB, want ~0", resp[1], resp[2])
	}
}

func TestResponseDB_GainIgnoredForPassShapes(t *testing.T) {
	// A low-pass band must produce the same curve regardless of gain.
	lp := func(gain float64) []float64 {
		bands := []Band{{ID: "a", Shape: ShapeLowPass, FrequencyHz: 1000, GainDB: gain, Q: 0.707, Enabled: true}}
		return ResponseDB(bands, []float64{100, 1000, 10000}, 44100)
	}

	a := lp(0)
	b := lp(12)

	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("low-pass response depends on gain at point %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestCloneBands_DeepCopy(t *testing.T) {
	orig := []Band{validBand("a")}
	clone := CloneBands(orig)

	clone[0].GainDB = -12
	if orig[0].GainDB == -12 {
		t.Fatal("CloneBands aliases the original slice")
	}

	if CloneBands(nil) != nil {
		t.Fatal("CloneBands(nil) should stay nil")
	}
}
