package main

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artur0sky/sonantica-sub003/engine"
	"github.com/artur0sky/sonantica-sub003/engine/meter"
	"github.com/artur0sky/sonantica-sub003/source"
)

// MeterCmd streams a file through the chain at playback speed with a
// live terminal meter.
type MeterCmd struct {
	Input  string `arg:"" name:"input" type:"existingfile" help:"Audio file to meter (wav, mp3, ogg)"`
	Preset string `help:"Preset id to apply"`
	Bypass bool   `help:"Disable the processing chain"`
}

type meterMsg struct {
	snap   *meter.Snapshot
	frames int
}

type meterDoneMsg struct {
	err error
}

func (c *MeterCmd) Run(a *appContext) error {
	src, err := source.Open(c.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	e := a.newEngine()
	e.SetEnabled(!c.Bypass)
	if c.Preset != "" {
		e.ApplyPreset(c.Preset)
	}

	if err := e.Initialize(src); err != nil {
		return err
	}
	defer e.Dispose()

	model := newMeterModel(c.Input, src.SampleRate())
	p := tea.NewProgram(model, tea.WithAltScreen())

	go pump(p, e, src)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("meter ui: %w", err)
	}

	return nil
}

// pump renders blocks paced to wall-clock time and feeds snapshots to
// the UI.
func pump(p *tea.Program, e *engine.Engine, src source.Source) {
	channels := src.Channels()
	block := make([][]float64, channels)
	for ch := range block {
		block[ch] = make([]float64, engine.DefaultBlockSize)
	}

	blockDur := time.Duration(float64(engine.DefaultBlockSize) / float64(src.SampleRate()) * float64(time.Second))
	ticker := time.NewTicker(blockDur)
	defer ticker.Stop()

	total := 0
	for range ticker.C {
		n, err := e.Render(block)
		total += n

		if snap := e.Metrics(); snap != nil {
			p.Send(meterMsg{snap: snap, frames: total})
		}

		if err == io.EOF {
			p.Send(meterDoneMsg{})
			return
		}
		if err != nil {
			p.Send(meterDoneMsg{err: err})
			return
		}
	}
}
