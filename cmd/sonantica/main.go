// Command sonantica is a terminal front end for the processing engine:
// it renders audio files through the signal chain, shows a live level
// and spectrum meter, and manages the preset catalog.
package main

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/artur0sky/sonantica-sub003/engine"
	"github.com/artur0sky/sonantica-sub003/persist"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version information"`
	Verbose  bool             `help:"Enable debug logging"`
	Settings string           `short:"s" type:"path" help:"Settings file (defaults to the user config dir)"`

	Process ProcessCmd `cmd:"" help:"Render an audio file through the signal chain into a WAV file"`
	Meter   MeterCmd   `cmd:"" help:"Play a file through the chain with a live level and spectrum meter"`
	Presets PresetsCmd `cmd:"" help:"List, save, and delete equalizer presets"`
}

// appContext carries shared state into subcommand Run methods.
type appContext struct {
	log          *logrus.Logger
	settingsPath string
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sonantica"),
		kong.Description("Real-time music processing chain: vocal isolation, parametric EQ, and metering"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cli.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	app := &appContext{
		log:          log,
		settingsPath: cli.Settings,
	}
	if app.settingsPath == "" {
		app.settingsPath = defaultSettingsPath()
	}

	if err := ctx.Run(app); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sonantica-settings.json"
	}

	return filepath.Join(dir, "sonantica", "settings.json")
}

// newEngine builds an engine preloaded with the saved settings, if
// any. A missing or unreadable settings file is not fatal.
func (a *appContext) newEngine() *engine.Engine {
	e := engine.New(engine.WithLogger(a.log))

	doc, err := persist.Load(a.settingsPath)
	if err != nil {
		a.log.WithError(err).Debug("settings not loaded, using defaults")
		return e
	}

	persist.Apply(e, doc)

	return e
}

func (a *appContext) saveSettings(e *engine.Engine) error {
	return persist.Save(a.settingsPath, persist.Snapshot(e))
}
