package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sarsim/internal/telemetry"
)

// JSONStdoutWriter prints drone states and detection events as JSON to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a drone state row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.DroneStateRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple drone state rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent outputs a detection event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.DetectionEventRow) error {
	data, _ := json.Marshal(e)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvents outputs multiple detection events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}
