package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTemperature writes a temperature reading for a synchronised thing.
//
// This is the primary method for recording appliance telemetry data.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - thingID: Identifier of the synchronised entity (e.g., "office")
//   - measurement: Which temperature (e.g., "room_temperature", "outside_temperature")
//   - celsius: The reading in degrees Celsius
//
// Example:
//
//	client.WriteTemperature("office", "room_temperature", 21.5)
func (c *Client) WriteTemperature(thingID string, measurement string, celsius float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"temperature",
		map[string]string{
			"thing_id":    thingID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"celsius": celsius,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteModeChange records an operating mode or power transition.
//
// Mode is stored as a field rather than a tag to keep series cardinality
// bounded to one per thing.
//
// Parameters:
//   - thingID: Identifier of the synchronised entity
//   - mode: The semantic mode string (off, auto, cool, heat, dehumid, fan)
//   - powered: Whether the unit reports power on
func (c *Client) WriteModeChange(thingID string, mode string, powered bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"mode",
		map[string]string{
			"thing_id": thingID,
		},
		map[string]interface{}{
			"mode":    mode,
			"powered": powered,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
