// Package thing is the device-state synchronization core.
//
// Each networked appliance is mirrored by one SyncLoop: a goroutine
// that sleeps, polls the appliance over a throwaway device handle,
// translates the raw readings into typed property values, and pushes
// changes into a Sink. Consumer writes travel the opposite way as
// explicit commands through Apply, which performs the device write
// synchronously and lets the next poll confirm the result.
//
// A Fleet supervises the loops: it starts them together and shuts them
// down cooperatively, joining every loop before stopping the shared
// sink. Cancellation is only observed between polls, never mid-request.
//
// The raw-to-semantic translation lives here too: DecodeMode and
// EncodeMode map the appliance's power flag and mode code onto a single
// mode enum, and IsNumeric gates temperature readings so sensor
// sentinels ("-", "--", "M") are suppressed instead of published.
package thing
