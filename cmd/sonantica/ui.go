package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artur0sky/sonantica-sub003/engine/meter"
)

const (
	meterRangeDB    = 60.0 // bar span, -60 dB .. 0 dB
	spectrumColumns = 48
)

var sparkLevels = []rune(" ▁▂▃▄▅▆▇█")

// meterModel is the Bubbletea model behind the live meter view.
type meterModel struct {
	path       string
	sampleRate int

	snap   *meter.Snapshot
	frames int
	done   bool
	err    error
	width  int
}

func newMeterModel(path string, sampleRate int) meterModel {
	return meterModel{
		path:       path,
		sampleRate: sampleRate,
		width:      80,
	}
}

func (m meterModel) Init() tea.Cmd {
	return nil
}

func (m meterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case meterMsg:
		m.snap = msg.snap
		m.frames = msg.frames

	case meterDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m meterModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sonantica Meter"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("File:"), valueStyle.Render(m.path)))

	elapsed := float64(m.frames) / float64(m.sampleRate)
	b.WriteString(fmt.Sprintf("%s %s\n\n", keyStyle.Render("Time:"), valueStyle.Render(fmt.Sprintf("%6.1fs", elapsed))))

	if m.snap == nil {
		b.WriteString(keyStyle.Render("waiting for signal...") + "\n")
	} else {
		b.WriteString(levelLine("Peak", m.snap.PeakLevelDB, m.width))
		b.WriteString(levelLine("RMS ", m.snap.RMSLevelDB, m.width))
		if m.snap.Clipping {
			b.WriteString(clipStyle.Render("CLIP") + "\n")
		}
		b.WriteString("\n")
		b.WriteString(barStyle.Render(sparkline(m.snap.Spectrum, spectrumColumns)) + "\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(keyStyle.Render("press q to quit"))

	return b.String()
}

// levelLine renders one horizontal dB bar spanning -60..0 dB.
func levelLine(label string, db float64, width int) string {
	barWidth := width - 20
	if barWidth < 10 {
		barWidth = 10
	}

	frac := (db + meterRangeDB) / meterRangeDB
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	fill := int(frac * float64(barWidth))
	bar := strings.Repeat("█", fill) + strings.Repeat("░", barWidth-fill)

	return fmt.Sprintf("%s %s %s\n",
		keyStyle.Render(label),
		barStyle.Render(bar),
		valueStyle.Render(fmt.Sprintf("%6.1f dB", db)))
}

// sparkline folds the dB magnitude spectrum into a fixed number of
// columns, each scaled against the loudest bin. Bins sit between
// meter.FloorDB and 0 dB, so levels are rebased onto the floor before
// bucketing.
func sparkline(spectrum []float64, columns int) string {
	if len(spectrum) == 0 {
		return ""
	}
	if columns > len(spectrum) {
		columns = len(spectrum)
	}

	peaks := make([]float64, columns)
	max := 0.0
	per := len(spectrum) / columns
	for col := 0; col < columns; col++ {
		for i := col * per; i < (col+1)*per; i++ {
			v := spectrum[i] - meter.FloorDB
			if v < 0 {
				v = 0
			}
			if v > peaks[col] {
				peaks[col] = v
			}
		}
		if peaks[col] > max {
			max = peaks[col]
		}
	}
	if max <= 0 {
		max = 1
	}

	var b strings.Builder
	for _, p := range peaks {
		idx := int(p / max * float64(len(sparkLevels)-1))
		b.WriteRune(sparkLevels[idx])
	}

	return b.String()
}
