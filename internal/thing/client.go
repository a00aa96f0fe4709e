package thing

import "context"

// Client is the device-side handle a sync loop polls and writes
// through. Temperature reads return the raw reading shape: a float64
// for a working sensor, a sentinel string when the appliance has no
// value to report.
//
// Implementations are expected to be cheap to construct; loops request
// a fresh handle from their ClientFactory for every poll iteration and
// every command, so a transport wedged mid-request never poisons later
// iterations.
type Client interface {
	Identity(ctx context.Context) (kind, label string, err error)

	InsideTemperature(ctx context.Context) (any, error)
	OutsideTemperature(ctx context.Context) (any, error)
	TargetTemperature(ctx context.Context) (any, error)
	Power(ctx context.Context) (int, error)
	ModeCode(ctx context.Context) (int, error)

	SetTargetTemperature(ctx context.Context, celsius float64) error
	SetPower(ctx context.Context, on int) error
	SetModeCode(ctx context.Context, code int) error
}

// ClientFactory builds a device handle for a network address.
type ClientFactory func(address string) Client

// Logger is the minimal logging surface the loop and fleet need,
// satisfied by the infrastructure logger. Keeping it an interface
// here keeps the core testable without log plumbing.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards everything; used when no logger is wired.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
