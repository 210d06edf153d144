package main

import (
	"os"

	"sarsim/internal/scenario"
	"sarsim/internal/sim"
)

// newWriters sets up state and event writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
// interactive selects the colorized stdout writer over plain JSONL.
func newWriters(scn *scenario.Scenario, printOnly, interactive bool, logFile string) (sim.StateWriter, sim.EventWriter, func(), error) {
	cleanup := func() {}

	writer, eventWriter, err := baseWriters(scn, printOnly, interactive)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return writer, eventWriter, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".events")
	if err != nil {
		return nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.StateWriter{writer, fw},
		[]sim.EventWriter{eventWriter, fw},
	)
	cleanup = func() { fw.Close() }
	return mw, mw, cleanup, nil
}

// baseWriters chooses the underlying writers based on the printOnly flag and
// the GREPTIMEDB_ENDPOINT env var.
func baseWriters(scn *scenario.Scenario, printOnly, interactive bool) (sim.StateWriter, sim.EventWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		if interactive {
			w := sim.NewColorStdoutWriter(scn)
			return w, w, nil
		}
		w := sim.NewJSONStdoutWriter()
		return w, w, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database)
	if err != nil {
		return nil, nil, err
	}
	return w, w, nil
}
