package engine

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
	"github.com/artur0sky/sonantica-sub003/engine/preset"
	"github.com/artur0sky/sonantica-sub003/engine/vocal"
	"github.com/artur0sky/sonantica-sub003/source"
)

func newTestSource(d time.Duration) source.Source {
	return source.NewSine(440, 0.5, 44100, 2, d)
}

func renderAll(t *testing.T, e *Engine, frames int) [][]float64 {
	t.Helper()

	dst := make([][]float64, 2)
	for ch := range dst {
		dst[ch] = make([]float64, frames)
	}

	done := 0
	for done < frames {
		view := [][]float64{dst[0][done:], dst[1][done:]}
		n, err := e.Render(view)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if n == 0 {
			t.Fatalf("Render returned 0 frames after %d", done)
		}
		done += n
	}

	return dst
}

func TestRenderBeforeInitialize(t *testing.T) {
	e := New()

	dst := [][]float64{make([]float64, 64), make([]float64, 64)}
	if _, err := e.Render(dst); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Render err = %v, want ErrNotInitialized", err)
	}
	if e.Metrics() != nil {
		t.Fatal("Metrics should be nil before Initialize")
	}
}

func TestInitializeRejectsNilSource(t *testing.T) {
	e := New()

	if err := e.Initialize(nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("Initialize(nil) err = %v, want ErrNilSource", err)
	}
}

func TestDisposeReturnsToUninitialized(t *testing.T) {
	e := New()
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	e.Dispose()
	e.Dispose() // idempotent

	dst := [][]float64{make([]float64, 64), make([]float64, 64)}
	if _, err := e.Render(dst); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Render after Dispose err = %v, want ErrNotInitialized", err)
	}

	// re-initialization after dispose is supported
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("re-Initialize: %v", err)
	}
	if _, err := e.Render(dst); err != nil {
		t.Fatalf("Render after re-Initialize: %v", err)
	}
}

func TestBypassIsTransparent(t *testing.T) {
	e := New(WithBlockSize(256))
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	const frames = 512
	got := renderAll(t, e, frames)

	// identical generator, read directly
	ref := newTestSource(time.Second)
	raw := make([]float32, frames*2)
	for read := 0; read < len(raw); {
		n, err := ref.ReadSamples(raw[read:])
		if err != nil {
			t.Fatalf("ReadSamples: %v", err)
		}
		read += n
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < 2; ch++ {
			want := float64(raw[i*2+ch])
			if math.Abs(got[ch][i]-want) > 1e-12 {
				t.Fatalf("frame %d ch %d: got %g, want %g", i, ch, got[ch][i], want)
			}
		}
	}
}

func TestRenderDrainsToEOF(t *testing.T) {
	e := New(WithBlockSize(512))
	// 100ms at 44100 Hz is 4410 frames
	if err := e.Initialize(newTestSource(100 * time.Millisecond)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	dst := [][]float64{make([]float64, 512), make([]float64, 512)}
	total := 0
	for {
		n, err := e.Render(dst)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	if total != 4410 {
		t.Fatalf("total frames = %d, want 4410", total)
	}
}

func TestSetPreampClamps(t *testing.T) {
	e := New()

	e.SetPreamp(100)
	if got := e.Config().PreampDB; got != MaxPreampDB {
		t.Fatalf("PreampDB = %g, want %g", got, MaxPreampDB)
	}

	e.SetPreamp(-100)
	if got := e.Config().PreampDB; got != MinPreampDB {
		t.Fatalf("PreampDB = %g, want %g", got, MinPreampDB)
	}
}

func TestApplyPresetActivates(t *testing.T) {
	e := New()

	e.ApplyCustomEQ([]eq.Band{{ID: "b1", Shape: eq.ShapePeaking, FrequencyHz: 1000, Q: 1, Enabled: true}})
	e.ApplyPreset("rock")

	cfg := e.Config()
	if cfg.CurrentPresetID != "rock" {
		t.Fatalf("CurrentPresetID = %q, want rock", cfg.CurrentPresetID)
	}
	if cfg.CustomBands != nil {
		t.Fatal("CustomBands should be cleared by ApplyPreset")
	}
}

func TestApplyPresetUnknownIsIgnored(t *testing.T) {
	e := New()
	before := e.Config()

	e.ApplyPreset("no-such-preset")

	after := e.Config()
	if after.CurrentPresetID != before.CurrentPresetID {
		t.Fatalf("CurrentPresetID changed to %q", after.CurrentPresetID)
	}
}

func TestApplyCustomEQRejectsInvalid(t *testing.T) {
	e := New()
	e.ApplyPreset("jazz")

	bad := []eq.Band{
		{ID: "ok", Shape: eq.ShapePeaking, FrequencyHz: 1000, Q: 1, Enabled: true},
		{ID: "bad", Shape: eq.ShapePeaking, FrequencyHz: -5, Q: 1, Enabled: true},
	}
	e.ApplyCustomEQ(bad)

	cfg := e.Config()
	if cfg.CurrentPresetID != "jazz" || cfg.CustomBands != nil {
		t.Fatal("invalid custom eq must leave the previous state intact")
	}
}

func TestUpdateBandPromotesPresetToCustom(t *testing.T) {
	e := New()
	e.ApplyPreset("flat")

	bands := e.PresetManager().ActiveBands("flat", nil)
	if len(bands) == 0 {
		t.Fatal("flat preset has no bands")
	}
	target := bands[0].ID

	gain := 4.5
	e.UpdateBand(target, BandPatch{GainDB: &gain})

	cfg := e.Config()
	if cfg.CurrentPresetID != "" {
		t.Fatalf("CurrentPresetID = %q, want empty after promotion", cfg.CurrentPresetID)
	}
	if cfg.CustomBands == nil {
		t.Fatal("CustomBands should hold the promoted set")
	}
	if got := cfg.CustomBands[0].GainDB; got != gain {
		t.Fatalf("band gain = %g, want %g", got, gain)
	}

	// the stored preset is untouched
	flat, ok := e.PresetManager().Get(preset.FlatPresetID)
	if !ok {
		t.Fatal("flat preset missing")
	}
	if flat.Bands[0].GainDB != 0 {
		t.Fatalf("stored flat preset mutated: gain %g", flat.Bands[0].GainDB)
	}
}

func TestUpdateBandClampsPatch(t *testing.T) {
	e := New()
	e.ApplyPreset("flat")

	bands := e.PresetManager().ActiveBands("flat", nil)
	gain := 99.0
	e.UpdateBand(bands[0].ID, BandPatch{GainDB: &gain})

	if got := e.Config().CustomBands[0].GainDB; got != eq.MaxGainDB {
		t.Fatalf("band gain = %g, want clamp to %g", got, eq.MaxGainDB)
	}
}

func TestSavePresetBecomesCurrent(t *testing.T) {
	e := New()
	e.ApplyCustomEQ([]eq.Band{{ID: "b1", Shape: eq.ShapePeaking, FrequencyHz: 1000, GainDB: 3, Q: 1, Enabled: true}})

	p, err := e.SavePreset("mine", "test preset")
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	cfg := e.Config()
	if cfg.CurrentPresetID != p.ID {
		t.Fatalf("CurrentPresetID = %q, want %q", cfg.CurrentPresetID, p.ID)
	}
	if cfg.CustomBands != nil {
		t.Fatal("CustomBands should be cleared after save")
	}
}

func TestDeleteActivePresetResets(t *testing.T) {
	e := New()
	e.ApplyCustomEQ([]eq.Band{{ID: "b1", Shape: eq.ShapePeaking, FrequencyHz: 1000, GainDB: 3, Q: 1, Enabled: true}})
	p, err := e.SavePreset("mine", "")
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	e.SetEnabled(true)

	if err := e.DeletePreset(p.ID); err != nil {
		t.Fatalf("DeletePreset: %v", err)
	}

	cfg := e.Config()
	want := DefaultConfig()
	if cfg.CurrentPresetID != want.CurrentPresetID || cfg.Enabled != want.Enabled {
		t.Fatalf("config after delete = %+v, want defaults", cfg)
	}
}

func TestDeleteBuiltInPresetFails(t *testing.T) {
	e := New()

	if err := e.DeletePreset("rock"); !errors.Is(err, preset.ErrBuiltInPreset) {
		t.Fatalf("DeletePreset(rock) err = %v, want ErrBuiltInPreset", err)
	}
}

func TestSetVocalModeRejectsUnknown(t *testing.T) {
	e := New()

	e.SetVocalMode(vocal.Mode(42))
	if got := e.Config().VocalMode; got != vocal.ModeNormal {
		t.Fatalf("VocalMode = %v, want normal", got)
	}

	e.SetVocalMode(vocal.ModeKaraoke)
	if got := e.Config().VocalMode; got != vocal.ModeKaraoke {
		t.Fatalf("VocalMode = %v, want karaoke", got)
	}
}

func TestMetricsAfterRender(t *testing.T) {
	e := New(WithBlockSize(1024), WithFFTSize(1024))
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if e.Metrics() != nil {
		t.Fatal("Metrics should be nil before a full analysis frame")
	}

	renderAll(t, e, 2048)

	snap := e.Metrics()
	if snap == nil {
		t.Fatal("Metrics returned nil after rendering")
	}
	if snap.SampleRateHz != 44100 || snap.ChannelCount != 2 {
		t.Fatalf("snapshot format = %g Hz / %d ch", snap.SampleRateHz, snap.ChannelCount)
	}
	if snap.Clipping {
		t.Fatal("half-scale sine must not clip")
	}
	if math.IsNaN(snap.RMSLevelDB) || math.IsInf(snap.RMSLevelDB, 0) {
		t.Fatalf("RMS not finite: %g", snap.RMSLevelDB)
	}
}

func TestEnabledFlatChainStaysClose(t *testing.T) {
	raw := New(WithBlockSize(256))
	if err := raw.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	flat := New(WithBlockSize(256))
	flat.SetEnabled(true)
	flat.ApplyPreset("flat")
	if err := flat.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	const frames = 1024
	a := renderAll(t, raw, frames)
	b := renderAll(t, flat, frames)

	for ch := 0; ch < 2; ch++ {
		for i := 0; i < frames; i++ {
			if math.Abs(a[ch][i]-b[ch][i]) > 1e-6 {
				t.Fatalf("flat chain diverges at frame %d ch %d: %g vs %g", i, ch, a[ch][i], b[ch][i])
			}
		}
	}
}

func TestFailedReinitializeLeavesUninitialized(t *testing.T) {
	e := New()
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := e.Initialize(nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("Initialize(nil) err = %v, want ErrNilSource", err)
	}

	dst := [][]float64{make([]float64, 64), make([]float64, 64)}
	if _, err := e.Render(dst); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Render after failed re-Initialize err = %v, want ErrNotInitialized", err)
	}
	if e.Metrics() != nil {
		t.Fatal("Metrics should be nil after failed re-Initialize")
	}
}

func TestApplyCustomEQRejectsEmpty(t *testing.T) {
	e := New()
	e.ApplyPreset("jazz")

	e.ApplyCustomEQ(nil)
	e.ApplyCustomEQ([]eq.Band{})

	cfg := e.Config()
	if cfg.CurrentPresetID != "jazz" || cfg.CustomBands != nil {
		t.Fatalf("empty custom eq must leave the preset active, got %+v", cfg)
	}
}

func TestBypassRoundTripRestoresChain(t *testing.T) {
	newProcessing := func() *Engine {
		e := New(WithBlockSize(256))
		e.ApplyPreset("rock")
		e.SetPreamp(0)
		e.SetEnabled(true)
		if err := e.Initialize(newTestSource(time.Second)); err != nil {
			t.Fatalf("Initialize: %v", err)
		}

		return e
	}

	steady := newProcessing()
	toggled := newProcessing()

	// rebuild the live graph: off and back on before any rendering
	toggled.SetEnabled(false)
	toggled.SetEnabled(true)

	const frames = 512
	a := renderAll(t, steady, frames)
	b := renderAll(t, toggled, frames)

	for ch := 0; ch < 2; ch++ {
		for i := 0; i < frames; i++ {
			if a[ch][i] != b[ch][i] {
				t.Fatalf("re-enabled chain diverges at frame %d ch %d: %g vs %g", i, ch, a[ch][i], b[ch][i])
			}
		}
	}

	// while disabled the engine is transparent
	muted := newProcessing()
	muted.SetEnabled(false)

	raw := New(WithBlockSize(256))
	if err := raw.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	c := renderAll(t, muted, frames)
	d := renderAll(t, raw, frames)
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < frames; i++ {
			if c[ch][i] != d[ch][i] {
				t.Fatalf("bypassed chain not transparent at frame %d ch %d: %g vs %g", i, ch, c[ch][i], d[ch][i])
			}
		}
	}
}

func TestRebuildFailureFallsBackToBypass(t *testing.T) {
	e := New(WithBlockSize(256))
	e.SetEnabled(true)
	e.ApplyPreset("rock")
	e.SetPreamp(0)
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// corrupt the mode under the hood so the stage builder errors
	e.mu.Lock()
	e.cfg.VocalMode = vocal.Mode(99)
	e.rebuildLocked()
	if e.chain != nil {
		e.mu.Unlock()
		t.Fatal("failed rebuild must drop to the bypass topology")
	}
	e.mu.Unlock()

	// rendering continues, transparently
	raw := New(WithBlockSize(256))
	if err := raw.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	const frames = 256
	got := renderAll(t, e, frames)
	want := renderAll(t, raw, frames)
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < frames; i++ {
			if got[ch][i] != want[ch][i] {
				t.Fatalf("bypass fallback not transparent at frame %d ch %d: %g vs %g", i, ch, got[ch][i], want[ch][i])
			}
		}
	}
}

func TestSetMasterVolumeClamps(t *testing.T) {
	e := New()

	e.SetMasterVolume(2)
	e.SetMasterVolume(-1)
	// no panic, and the engine still initializes with the clamped level
	if err := e.Initialize(newTestSource(time.Second)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	dst := [][]float64{make([]float64, 256), make([]float64, 256)}
	if _, err := e.Render(dst); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, v := range dst[0] {
		if v != 0 {
			t.Fatalf("muted engine produced %g", v)
		}
	}
}
