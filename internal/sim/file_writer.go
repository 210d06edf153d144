package sim

import (
	"encoding/json"
	"os"

	"sarsim/internal/telemetry"
)

// FileWriter writes drone states and detection events to JSONL files.
type FileWriter struct {
	stateFile *os.File
	eventFile *os.File
	stateEnc  *json.Encoder
	eventEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath may be empty to skip the event log.
func NewFileWriter(statePath, eventPath string) (*FileWriter, error) {
	sf, err := os.Create(statePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{stateFile: sf, stateEnc: json.NewEncoder(sf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			sf.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	return fw, nil
}

// Write logs a single drone state row.
func (f *FileWriter) Write(row telemetry.DroneStateRow) error {
	return f.stateEnc.Encode(row)
}

// WriteBatch logs multiple drone state rows.
func (f *FileWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a single detection event row, if enabled.
func (f *FileWriter) WriteEvent(e telemetry.DetectionEventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple detection event rows.
func (f *FileWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	for _, e := range rows {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.stateFile != nil {
		if e := f.stateFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
