// Package influxdb provides InfluxDB connectivity for daikinthing.
//
// It wraps the official influxdb-client-go v2 library with daikinthing
// patterns for connection management, telemetry writing, and health
// monitoring.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Room, outside, and target temperature readings
//   - Operating mode and power transitions
//
// InfluxDB is optional; when disabled in config the rest of the system
// operates normally without telemetry.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteTemperature("office", "room_temperature", 21.5)
package influxdb
