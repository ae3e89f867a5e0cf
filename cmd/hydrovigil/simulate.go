package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"hydrovigil/internal/engine"
	"hydrovigil/internal/scheduler"
	"hydrovigil/pkg/models"
)

type simulateOptions struct {
	start        time.Time
	triggerAfter time.Duration
	runFor       time.Duration
	reset        bool
	includeTicks bool
}

// simulateRecord is one output line: an engine event or the closing snapshot.
type simulateRecord struct {
	Kind     string           `json:"kind"`
	Event    *models.Event    `json:"event,omitempty"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
}

func runSimulate(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	configFlag := fs.String("config", "", "path to config file (simulation section only)")
	output := fs.String("output", "output/simulation.jsonl", "JSONL output path, - for stdout")
	seed := fs.Int64("seed", 1, "random seed (0 = random)")
	triggerAfter := fs.Duration("trigger-after", 5*time.Second, "baseline time before the attack is triggered")
	runFor := fs.Duration("run-for", 20*time.Second, "simulated time after the trigger")
	reset := fs.Bool("reset", true, "reset the system at the end of the run")
	includeTicks := fs.Bool("telemetry", false, "include telemetry events in the output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	simCfg := engine.Config{Seed: *seed}
	if *configFlag != "" {
		cfg, _ := loadConfig(*configFlag)
		simCfg = engineConfig(cfg.HydroVigil.Simulation)
		simCfg.Seed = *seed
	}

	records := simulate(simCfg, simulateOptions{
		start:        time.Now().UTC().Truncate(time.Second),
		triggerAfter: *triggerAfter,
		runFor:       *runFor,
		reset:        *reset,
		includeTicks: *includeTicks,
	})

	var err error
	if *output == "-" {
		err = encodeJSONLines(os.Stdout, records)
	} else {
		err = writeJSONLines(*output, records)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write simulation: %v\n", err)
		return 1
	}

	last := records[len(records)-1].Snapshot
	if *output != "-" {
		fmt.Printf("simulated records=%d final_phase=%s target=%s output=%s\n", len(records), last.Phase, last.AttackTarget, *output)
	}
	return 0
}

// simulate runs one scripted scenario on a manual clock and returns every event
// followed by the final snapshot.
func simulate(cfg engine.Config, opts simulateOptions) []simulateRecord {
	clock := scheduler.NewManualClock(opts.start)

	var records []simulateRecord
	sink := engine.SinkFunc(func(ev models.Event) {
		if ev.Type == models.EventTelemetry && !opts.includeTicks {
			return
		}
		records = append(records, simulateRecord{Kind: "event", Event: &ev})
	})

	eng := engine.New(cfg, clock, sink)
	eng.Start()
	defer eng.Close()

	clock.Advance(opts.triggerAfter)
	eng.TriggerAttack()
	clock.Advance(opts.runFor)
	if opts.reset {
		eng.Reset()
	}

	snap := eng.Snapshot()
	return append(records, simulateRecord{Kind: "snapshot", Snapshot: &snap})
}

func writeJSONLines[T any](path string, rows []T) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	return encodeJSONLines(f, rows)
}

func encodeJSONLines[T any](out io.Writer, rows []T) error {
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, item := range rows {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
