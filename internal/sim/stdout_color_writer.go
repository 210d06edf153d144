// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"sarsim/internal/scenario"
	"sarsim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints drone state rows using ANSI colors.
type ColorStdoutWriter struct {
	scn         *scenario.Scenario
	out         io.Writer
	once        sync.Once
	droneColors map[string]string
	colorIdx    int
}

var dronePalette = []string{colorGreen, colorYellow, colorBlue, colorMagenta, colorCyan}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(scn *scenario.Scenario) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		scn:         scn,
		out:         os.Stdout,
		droneColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) getDroneColor(id string) string {
	if c, ok := w.droneColors[id]; ok {
		return c
	}
	c := dronePalette[w.colorIdx%len(dronePalette)]
	w.droneColors[id] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.scn == nil {
		return
	}

	fmt.Fprintln(w.out, "Scenario Overview:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", w.scn.Name)
	fmt.Fprintf(tw, "Seed:\t%s\n", w.scn.Seed)
	fmt.Fprintf(tw, "Sector:\t%s (%.0fm x %.0fm)\n", w.scn.Sector.ID, w.scn.Sector.Bounds.WidthMeters, w.scn.Sector.Bounds.HeightMeters)
	fmt.Fprintf(tw, "Sea State:\t%d\n", w.scn.Sector.Conditions.SeaState)
	fmt.Fprintf(tw, "Wind (kts):\t%.1f\n", w.scn.Sector.Conditions.WindKts)
	fmt.Fprintf(tw, "Visibility (km):\t%.1f\n", w.scn.Sector.Conditions.VisibilityKm)
	fmt.Fprintf(tw, "Water Temp (C):\t%.1f\n", w.scn.Sector.Conditions.SurfaceTempC)
	fmt.Fprintf(tw, "Anomalies:\t%d\n", len(w.scn.Anomalies.Items))
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single drone state row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.DroneStateRow) error {
	w.once.Do(w.printOverview)

	dColor := w.getDroneColor(row.DroneID)
	statusColor := colorGreen
	switch row.Status {
	case string(StatusReturning):
		statusColor = colorYellow
	case string(StatusError):
		statusColor = colorRed
	}
	if row.BatteryPct <= 25 {
		statusColor = colorRed
	}

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%ssector=%s%s ", colorBlue, row.SectorID, colorReset)
	fmt.Fprintf(w.out, "%sdrone=%s%s ", dColor, row.DroneID, colorReset)
	fmt.Fprintf(w.out, "%sx=%.1f%s ", colorGreen, row.X, colorReset)
	fmt.Fprintf(w.out, "%sy=%.1f%s ", colorYellow, row.Y, colorReset)
	fmt.Fprintf(w.out, "%shdg=%.1f%s ", colorCyan, row.HeadingDeg, colorReset)
	fmt.Fprintf(w.out, "%sspd=%.1f%s ", colorMagenta, row.SpeedKts, colorReset)
	fmt.Fprintf(w.out, "%sbatt=%.1f%%%s ", colorCyan, row.BatteryPct, colorReset)
	fmt.Fprintf(w.out, "%srtn=%.1fm%s ", colorGray, row.ReturnMin, colorReset)
	fmt.Fprintf(w.out, "%sstatus=%s%s\n", statusColor, row.Status, colorReset)
	return nil
}

// WriteBatch outputs multiple drone state rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent prints a detection event to STDOUT.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.DetectionEventRow) error {
	w.once.Do(w.printOverview)
	kindColor := colorRed
	switch e.Kind {
	case telemetry.EventDetected:
		kindColor = colorGreen
	case telemetry.EventFalsePositive, telemetry.EventFalseNegative:
		kindColor = colorYellow
	}
	fmt.Fprintf(w.out, "%s[%s]%s %s%s%s drone=%s anomaly=%s type=%s pos=(%.1f,%.1f) conf=%.2f %s\n",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		kindColor, e.Kind, colorReset, e.DroneID, e.AnomalyID, e.AnomalyType,
		e.Position.X, e.Position.Y, e.Confidence, e.Message)
	return nil
}

// WriteEvents prints multiple detection events.
func (w *ColorStdoutWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}
