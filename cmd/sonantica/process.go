package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/artur0sky/sonantica-sub003/engine"
	"github.com/artur0sky/sonantica-sub003/engine/vocal"
	"github.com/artur0sky/sonantica-sub003/source"
)

const outputBitDepth = 16

// ProcessCmd renders a file through the chain offline.
type ProcessCmd struct {
	Input  string `arg:"" name:"input" type:"existingfile" help:"Audio file to process (wav, mp3, ogg)"`
	Output string `short:"o" type:"path" help:"Output WAV path (defaults to <input>.processed.wav)"`

	Preset    string   `help:"Preset id to apply"`
	Preamp    *float64 `help:"Preamp override in dB"`
	VocalMode string   `name:"vocal-mode" help:"Vocal mode: normal, karaoke, musician, ai-karaoke, ai-vocals"`
	Crossfeed *float64 `help:"Crossfeed strength 0..1 (0 disables)"`
	Bypass    bool     `help:"Disable the processing chain (preamp and master still apply)"`
}

func (c *ProcessCmd) Run(a *appContext) error {
	src, err := source.Open(c.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	e := a.newEngine()
	e.SetEnabled(!c.Bypass)

	if c.Preset != "" {
		if _, ok := e.PresetManager().Get(c.Preset); !ok {
			return fmt.Errorf("unknown preset %q", c.Preset)
		}
		e.ApplyPreset(c.Preset)
	}
	if c.Preamp != nil {
		e.SetPreamp(*c.Preamp)
	}
	if c.VocalMode != "" {
		mode, err := vocal.ParseMode(c.VocalMode)
		if err != nil {
			return err
		}
		e.SetVocalMode(mode)
	}
	if c.Crossfeed != nil {
		e.SetCrossfeed(*c.Crossfeed > 0, *c.Crossfeed)
	}

	if err := e.Initialize(src); err != nil {
		return err
	}
	defer e.Dispose()

	outPath := c.Output
	if outPath == "" {
		outPath = strings.TrimSuffix(c.Input, sourceExt(c.Input)) + ".processed.wav"
	}

	start := time.Now()
	frames, err := renderToWAV(e, src, outPath)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Sonantica"))
	printKV("Input:", c.Input)
	printKV("Output:", outPath)
	printKV("Frames:", fmt.Sprintf("%d", frames))
	printKV("Duration:", fmt.Sprintf("%.1fs", float64(frames)/float64(src.SampleRate())))
	printKV("Elapsed:", time.Since(start).Round(time.Millisecond).String())

	if snap := e.Metrics(); snap != nil {
		printKV("Peak:", fmt.Sprintf("%.1f dB", snap.PeakLevelDB))
		printKV("RMS:", fmt.Sprintf("%.1f dB", snap.RMSLevelDB))
		if snap.Clipping {
			fmt.Println(clipStyle.Render("Warning: output is clipping"))
		}
	}

	return nil
}

func sourceExt(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}

	return ""
}

func printKV(key, value string) {
	fmt.Printf("%s %s\n", keyStyle.Render(key), valueStyle.Render(value))
}

// renderToWAV drains the engine into a 16-bit PCM WAV file and returns
// the number of frames written.
func renderToWAV(e *engine.Engine, src source.Source, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	channels := src.Channels()
	enc := wav.NewEncoder(f, src.SampleRate(), outputBitDepth, channels, 1)

	block := make([][]float64, channels)
	for ch := range block {
		block[ch] = make([]float64, engine.DefaultBlockSize)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: src.SampleRate()},
		SourceBitDepth: outputBitDepth,
	}

	total := 0
	for {
		n, err := e.Render(block)
		if n > 0 {
			buf.Data = interleaveToInt(block, n, buf.Data)
			if werr := enc.Write(buf); werr != nil {
				return total, fmt.Errorf("write %s: %w", path, werr)
			}
			total += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}
	}

	if err := enc.Close(); err != nil {
		return total, fmt.Errorf("finalize %s: %w", path, err)
	}

	return total, nil
}

func interleaveToInt(block [][]float64, frames int, dst []int) []int {
	channels := len(block)
	need := frames * channels
	if cap(dst) < need {
		dst = make([]int, need)
	}
	dst = dst[:need]

	const fullScale = 1 << (outputBitDepth - 1)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s := core.Clamp(block[ch][i], -1, 1)
			dst[i*channels+ch] = int(s * (fullScale - 1))
		}
	}

	return dst
}
