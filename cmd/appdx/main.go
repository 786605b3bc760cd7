package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/appdx/internal/config"
	"github.com/dm/appdx/internal/trace"
	"github.com/dm/appdx/internal/tui"
)

func main() {
	var (
		secrets     = flag.String("secrets", "secrets.yml", "path to the credential store")
		output      = flag.String("output", "", "workbook output path (default appdx-<timestamp>.xlsx)")
		debug       = flag.Bool("debug", false, "log request/response detail")
		insecure    = flag.Bool("insecure", false, "skip TLS certificate verification")
		apmMins     = flag.Int("apm-mins", 0, "agent availability window in minutes")
		machineMins = flag.Int("machine-mins", 0, "machine availability window in minutes")
		snapMins    = flag.Int("snapshot-mins", 0, "snapshot window in minutes")
		eventMins   = flag.Int("event-mins", 0, "event window in minutes")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: appdx [flags]\n\n")
		fmt.Fprintf(os.Stderr, "examples:\n")
		fmt.Fprintf(os.Stderr, "  appdx\n")
		fmt.Fprintf(os.Stderr, "  appdx --debug --output inventory.xlsx\n")
		fmt.Fprintf(os.Stderr, "  appdx --snapshot-mins 240 --event-mins 240\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(flag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected argument %q\n", flag.Args()[0])
		flag.Usage()
		os.Exit(1)
	}

	settings, err := buildSettings(*debug, *insecure, *apmMins, *machineMins, *snapMins, *eventMins)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := trace.New(settings.Debug)
	store := config.NewSecretStore(*secrets)

	app := tui.NewApp(store, settings, log, *output)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// buildSettings layers the command line over the environment-aware defaults.
// A zero duration flag means "keep the default"; negatives are rejected.
func buildSettings(debug, insecure bool, apmMins, machineMins, snapMins, eventMins int) (config.Settings, error) {
	s := config.DefaultSettings()
	if debug {
		s.Debug = true
	}
	if insecure {
		s.VerifySSL = false
	}

	for _, d := range []struct {
		name  string
		value int
		dst   *int
	}{
		{"apm-mins", apmMins, &s.APMMetricDurationMins},
		{"machine-mins", machineMins, &s.MachineMetricDurationMins},
		{"snapshot-mins", snapMins, &s.SnapshotDurationMins},
		{"event-mins", eventMins, &s.EventDurationMins},
	} {
		if d.value < 0 {
			return config.Settings{}, fmt.Errorf("--%s must be positive", d.name)
		}
		if d.value > 0 {
			*d.dst = d.value
		}
	}
	return s, nil
}
