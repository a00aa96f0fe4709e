// Package daikin implements the HTTP client for Daikin appliances.
//
// This package speaks the local API exposed by the BRP069-series WiFi
// adapter fitted to Daikin split units. The adapter answers plain HTTP
// GET requests with flat comma-separated field lists:
//
//	GET /common/basic_info        → identity (type, name)
//	GET /aircon/get_sensor_info   → htemp, otemp
//	GET /aircon/get_control_info  → pow, mode, stemp, shum
//	GET /aircon/set_control_info  → writes (full tuple required)
//
// # Raw values
//
// Temperatures come back as strings on the wire. A working sensor
// reports a numeric string ("24.0"), which this package parses to a
// float64; an unavailable reading is a sentinel like "-", "--", or "M"
// and is handed to the caller as the raw string. internal/thing
// decides what is usable.
//
// # Error model
//
// All failures wrap either ErrRead or ErrWrite, checkable with
// errors.Is. Reads are transient (the next poll retries implicitly);
// writes are never retried.
//
// # Thread Safety
//
// A Client is safe for concurrent use, but the sync loops construct a
// fresh Client per operation anyway — the adapter is stateless and so
// is the client.
package daikin
