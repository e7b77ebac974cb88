package main

import (
	"fmt"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
)

// PresetsCmd manages the preset catalog.
type PresetsCmd struct {
	List   PresetsListCmd   `cmd:"" default:"1" help:"List available presets"`
	Show   PresetsShowCmd   `cmd:"" help:"Show a preset's bands"`
	Delete PresetsDeleteCmd `cmd:"" help:"Delete a custom preset"`
}

type PresetsListCmd struct{}

func (c *PresetsListCmd) Run(a *appContext) error {
	e := a.newEngine()

	fmt.Println(titleStyle.Render("Presets"))
	for _, p := range e.Presets() {
		kind := "custom"
		if p.BuiltIn {
			kind = "built-in"
		}
		fmt.Printf("%s %s %s\n",
			valueStyle.Render(fmt.Sprintf("%-24s", p.ID)),
			keyStyle.Render(fmt.Sprintf("%-9s", kind)),
			keyStyle.Render(p.Description))
	}

	return nil
}

type PresetsShowCmd struct {
	ID string `arg:"" help:"Preset id"`
}

func (c *PresetsShowCmd) Run(a *appContext) error {
	e := a.newEngine()

	p, ok := e.PresetManager().Get(c.ID)
	if !ok {
		return fmt.Errorf("unknown preset %q", c.ID)
	}

	fmt.Println(titleStyle.Render(p.Name))
	if p.Description != "" {
		fmt.Println(keyStyle.Render(p.Description))
	}
	printKV("Preamp:", fmt.Sprintf("%+.1f dB", p.PreampDB))
	fmt.Println()

	for _, b := range p.Bands {
		state := " "
		if !b.Enabled {
			state = keyStyle.Render("(off)")
		}
		fmt.Printf("%s %s %s %s\n",
			valueStyle.Render(fmt.Sprintf("%8.5g Hz", b.FrequencyHz)),
			keyStyle.Render(fmt.Sprintf("%-10s", b.Shape)),
			gainCell(b),
			state)
	}

	return nil
}

func gainCell(b eq.Band) string {
	if !b.Shape.HasGain() {
		return keyStyle.Render(fmt.Sprintf("Q %.3g", b.Q))
	}

	return valueStyle.Render(fmt.Sprintf("%+5.1f dB", b.GainDB))
}

type PresetsDeleteCmd struct {
	ID string `arg:"" help:"Custom preset id"`
}

func (c *PresetsDeleteCmd) Run(a *appContext) error {
	e := a.newEngine()

	if err := e.DeletePreset(c.ID); err != nil {
		return err
	}

	if err := a.saveSettings(e); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", keyStyle.Render("Deleted:"), valueStyle.Render(c.ID))

	return nil
}
