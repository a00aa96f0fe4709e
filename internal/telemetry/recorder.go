package telemetry

import (
	"context"
	"sync"

	"github.com/KaiRo-at/daikinthing/internal/history"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/influxdb"
	"github.com/KaiRo-at/daikinthing/internal/thing"
)

// Logger matches the infrastructure logger surface used here.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Recorder fans completed poll snapshots out to the optional storage
// backends: one JSON row per poll in SQLite, temperature points and
// mode transitions in InfluxDB.
//
// Recording is strictly best-effort. A failing backend is logged and
// ignored; the sync loops never see storage trouble.
type Recorder struct {
	readings *history.Repository
	influx   *influxdb.Client
	logger   Logger

	mu       sync.Mutex
	lastMode map[string]string
}

// NewRecorder builds a recorder. Either backend may be nil.
func NewRecorder(readings *history.Repository, influx *influxdb.Client, logger Logger) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{
		readings: readings,
		influx:   influx,
		logger:   logger,
		lastMode: make(map[string]string),
	}
}

// RecordPoll implements thing.Recorder.
func (r *Recorder) RecordPoll(ctx context.Context, thingID string, values map[string]thing.Value) {
	if len(values) == 0 {
		return
	}

	if r.readings != nil {
		state := make(map[string]any, len(values))
		for name, v := range values {
			state[name] = v.Interface()
		}
		if err := r.readings.RecordReading(ctx, thingID, state); err != nil {
			r.logger.Warn("recording reading", "thing_id", thingID, "error", err)
		}
	}

	if r.influx != nil && r.influx.IsConnected() {
		r.writePoints(thingID, values)
	}
}

// temperature property names mapped to their Influx measurement tags.
var temperatureMeasurements = map[string]string{
	thing.PropRoomTemperature:    "room",
	thing.PropTargetTemperature:  "target",
	thing.PropOutsideTemperature: "outside",
}

func (r *Recorder) writePoints(thingID string, values map[string]thing.Value) {
	for name, measurement := range temperatureMeasurements {
		v, ok := values[name]
		if !ok || v.Kind() != thing.KindNumber {
			continue
		}
		r.influx.WriteTemperature(thingID, measurement, v.Number())
	}

	mode, hasMode := values[thing.PropMode]
	power, hasPower := values[thing.PropPower]
	if !hasMode || !hasPower {
		return
	}

	// Mode points only on transitions; a 15s cadence of identical
	// mode rows is noise.
	r.mu.Lock()
	changed := r.lastMode[thingID] != mode.Str()
	r.lastMode[thingID] = mode.Str()
	r.mu.Unlock()
	if !changed {
		return
	}

	r.influx.WriteModeChange(thingID, mode.Str(), power.Boolean())
	r.logger.Debug("mode transition recorded", "thing_id", thingID, "mode", mode.Str())
}
