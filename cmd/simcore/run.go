package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/hybridpetri/simcore/config"
	"github.com/hybridpetri/simcore/net"
	"github.com/hybridpetri/simcore/sim"
)

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	settingsPath := fs.String("settings", "", "YAML settings file (optional, falls back to defaults)")
	duration := fs.Float64("duration", 0, "Run duration in seconds (overrides settings file if > 0)")
	asJSON := fs.Bool("json", false, "Print the final marking as JSON instead of plain text")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: simcore run <model.json> [options]

Run a net to completion (or until --duration elapses) and print the final
marking.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("model file required")
	}
	// Options may also follow the model path.
	modelPath := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return err
	}

	n, err := net.LoadFile(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	settings := sim.DefaultSettings()
	if *settingsPath != "" {
		settings, err = config.LoadSettings(*settingsPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
	}
	if *duration > 0 {
		settings.DurationSeconds = duration
	}
	if settings.DurationSeconds == nil {
		return fmt.Errorf("a run duration is required: pass --duration or set durationSeconds in --settings")
	}

	orch, err := sim.New(n, settings, nil)
	if err != nil {
		return fmt.Errorf("construct orchestrator: %w", err)
	}

	dt, err := settings.EffectiveDt()
	if err != nil {
		return fmt.Errorf("compute step size: %w", err)
	}

	for !orch.IsComplete() {
		if _, err := orch.Step(dt); err != nil {
			return fmt.Errorf("step at t=%v: %w", orch.Now(), err)
		}
	}

	return printMarking(orch.Marking(), *asJSON)
}

func printMarking(m sim.Marking, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	for place, tokens := range m {
		fmt.Printf("%s\t%v\n", place, tokens)
	}
	return nil
}
