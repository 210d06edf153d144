package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"sarsim/internal/telemetry"
)

// greptimeClient is the slice of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes drone state and detection events to GreptimeDB
// via the gRPC ingester. Tables are created by the server on first write.
type GreptimeDBWriter struct {
	client     greptimeClient
	stateTable string
	eventTable string
}

// NewGreptimeDBWriter connects to GreptimeDB. endpoint is "host" or
// "host:port" (port defaults to 4001, the gRPC ingest port).
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid GreptimeDB endpoint %q: %w", endpoint, err)
		}
		cfg = greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	}

	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:     client,
		stateTable: telemetry.StateTableName,
		eventTable: telemetry.EventTableName,
	}, nil
}

// Write inserts a single drone state row.
func (w *GreptimeDBWriter) Write(row telemetry.DroneStateRow) error {
	return w.WriteBatch([]telemetry.DroneStateRow{row})
}

// WriteBatch inserts multiple drone state rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	if err := addStateSchema(tbl); err != nil {
		return err
	}
	for _, r := range rows {
		err := tbl.AddRow(
			r.SectorID, r.DroneID,
			r.Callsign, r.X, r.Y, r.HeadingDeg, r.SpeedKts,
			r.BatteryPct, r.BatteryMin, r.Status,
			r.ReturnMin, r.ReserveMin, int64(r.QueuedPoints),
			r.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("state batch write: %w", err)
	}
	return nil
}

func addStateSchema(tbl *table.Table) error {
	if err := tbl.AddTagColumn("sector_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("drone_id", types.STRING); err != nil {
		return err
	}
	fields := []struct {
		name string
		typ  types.ColumnType
	}{
		{"callsign", types.STRING},
		{"x", types.FLOAT64},
		{"y", types.FLOAT64},
		{"heading_deg", types.FLOAT64},
		{"speed_kts", types.FLOAT64},
		{"battery_pct", types.FLOAT64},
		{"battery_min", types.FLOAT64},
		{"status", types.STRING},
		{"return_min", types.FLOAT64},
		{"reserve_min", types.FLOAT64},
		{"queued_points", types.INT64},
	}
	for _, f := range fields {
		if err := tbl.AddFieldColumn(f.name, f.typ); err != nil {
			return err
		}
	}
	return tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
}

// WriteEvent inserts a single detection event row.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.DetectionEventRow) error {
	return w.WriteEvents([]telemetry.DetectionEventRow{row})
}

// WriteEvents inserts multiple detection event rows.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := addEventSchema(tbl); err != nil {
		return err
	}
	for _, r := range rows {
		err := tbl.AddRow(
			r.SectorID, r.Kind,
			r.DroneID, r.AnomalyID, r.AnomalyType,
			r.Position.X, r.Position.Y,
			r.Confidence, r.BatteryPct, r.ReturnMin, r.Message,
			r.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("event batch write: %w", err)
	}
	return nil
}

func addEventSchema(tbl *table.Table) error {
	if err := tbl.AddTagColumn("sector_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("kind", types.STRING); err != nil {
		return err
	}
	fields := []struct {
		name string
		typ  types.ColumnType
	}{
		{"drone_id", types.STRING},
		{"anomaly_id", types.STRING},
		{"anomaly_type", types.STRING},
		{"x", types.FLOAT64},
		{"y", types.FLOAT64},
		{"confidence", types.FLOAT64},
		{"battery_pct", types.FLOAT64},
		{"return_min", types.FLOAT64},
		{"message", types.STRING},
	}
	for _, f := range fields {
		if err := tbl.AddFieldColumn(f.name, f.typ); err != nil {
			return err
		}
	}
	return tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
}
