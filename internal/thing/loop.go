package thing

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// LoopState tracks where a sync loop is in its lifecycle.
type LoopState int32

const (
	StateNew LoopState = iota
	StateRunning
	StateCancelling
	StateStopped
)

func (s LoopState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// LoopOptions configures a SyncLoop.
type LoopOptions struct {
	// Address is the appliance's network address.
	Address string

	// Role selects the exposed property set.
	Role Role

	// Interval is the poll cadence. Zero means DefaultPollInterval.
	Interval time.Duration

	// Factory builds device handles. Required.
	Factory ClientFactory

	// Sink receives property updates. Required.
	Sink Sink

	// Recorder observes completed polls. Optional.
	Recorder Recorder

	// Logger defaults to a no-op logger.
	Logger Logger
}

// DefaultPollInterval is the poll cadence when none is configured.
const DefaultPollInterval = 15 * time.Second

// SyncLoop mirrors one appliance into the property sink.
//
// The loop owns nothing long-lived on the device side: every poll
// iteration and every command builds a fresh handle through the
// factory. Failed polls are logged and swallowed; the loop keeps its
// cadence and the sink keeps the last good values.
type SyncLoop struct {
	id       string
	title    string
	address  string
	role     Role
	interval time.Duration

	factory  ClientFactory
	sink     Sink
	recorder Recorder
	logger   Logger

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	values map[string]Value

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSyncLoop identifies the appliance and prepares a loop for it.
//
// Identity is looked up once, here, over a fresh handle; a device that
// cannot even say what it is gets no loop. The error wraps ErrIdentity
// so the supervisor can tell construction failures from runtime ones.
func NewSyncLoop(ctx context.Context, opts LoopOptions) (*SyncLoop, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("loop for %s: factory is required", opts.Address)
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("loop for %s: sink is required", opts.Address)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Role == "" {
		opts.Role = RoleIndoorUnit
	}

	kind, label, err := opts.Factory(opts.Address).Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIdentity, opts.Address, err)
	}

	l := &SyncLoop{
		address:  opts.Address,
		role:     opts.Role,
		interval: opts.Interval,
		factory:  opts.Factory,
		sink:     opts.Sink,
		recorder: opts.Recorder,
		done:     make(chan struct{}),
		values:   make(map[string]Value),
	}

	switch opts.Role {
	case RoleCondenser:
		l.id = "daikin-" + opts.Address + "-condenser"
		l.title = fmt.Sprintf("Daikin %s %s Condenser", kind, label)
	default:
		l.id = "daikin-" + opts.Address
		l.title = fmt.Sprintf("Daikin %s %s", kind, label)
	}
	l.logger = opts.Logger

	return l, nil
}

// ID returns the external thing identifier.
func (l *SyncLoop) ID() string { return l.id }

// Title returns the human-readable name built from the appliance's
// reported kind and label.
func (l *SyncLoop) Title() string { return l.title }

// State returns the loop's current lifecycle state.
func (l *SyncLoop) State() LoopState { return LoopState(l.state.Load()) }

// Definition returns what the sink needs to host this thing.
func (l *SyncLoop) Definition() Definition {
	var props []Property
	if l.role == RoleCondenser {
		props = condenserProperties()
	} else {
		props = indoorProperties()
	}
	return Definition{
		ID:         l.id,
		Title:      l.title,
		Properties: props,
		Applier:    l,
	}
}

// Start registers the thing with the sink and begins polling. The
// second and later calls return ErrAlreadyStarted.
func (l *SyncLoop) Start() error {
	started := false
	var err error
	l.startOnce.Do(func() {
		started = true
		if err = l.sink.Register(l.Definition()); err != nil {
			close(l.done)
			l.state.Store(int32(StateStopped))
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		l.cancel = cancel
		l.state.Store(int32(StateRunning))
		go l.run(ctx)
	})
	if !started {
		return fmt.Errorf("loop %s: %w", l.id, ErrAlreadyStarted)
	}
	if err != nil {
		return fmt.Errorf("loop %s: register: %w", l.id, err)
	}
	return nil
}

// CancelAndJoin requests cancellation and blocks until the loop has
// fully unwound. Idempotent and safe from any goroutine; concurrent
// callers all return once the loop is down.
//
// Cancellation is only observed at the sleep boundary: an in-flight
// poll or command is never interrupted, so join latency is bounded by
// one device round-trip.
func (l *SyncLoop) CancelAndJoin() {
	l.stopOnce.Do(func() {
		// Consume the start slot so a loop that never ran still
		// joins cleanly and cannot start afterwards.
		l.startOnce.Do(func() {
			l.state.Store(int32(StateStopped))
			close(l.done)
		})
		l.state.CompareAndSwap(int32(StateRunning), int32(StateCancelling))
		if l.cancel != nil {
			l.cancel()
		}
	})
	<-l.done
}

func (l *SyncLoop) run(ctx context.Context) {
	defer func() {
		l.state.Store(int32(StateStopped))
		close(l.done)
	}()

	l.logger.Info("sync loop started",
		"thing_id", l.id,
		"address", l.address,
		"role", string(l.role),
		"interval", l.interval.String())

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("sync loop stopped", "thing_id", l.id)
			return
		case <-time.After(l.interval):
		}

		if err := l.poll(); err != nil {
			// One bad poll is routine (WiFi adapter asleep,
			// unit rebooting); the next iteration retries.
			l.logger.Warn("poll failed", "thing_id", l.id, "error", err)
		}
	}
}

// poll reads the appliance once and pushes fresh values to the sink.
// The device handle is built per call and abandoned afterwards.
func (l *SyncLoop) poll() error {
	ctx := context.Background()
	client := l.factory(l.address)

	if l.role == RoleCondenser {
		return l.pollCondenser(ctx, client)
	}
	return l.pollIndoor(ctx, client)
}

func (l *SyncLoop) pollIndoor(ctx context.Context, client Client) error {
	roomRaw, err := client.InsideTemperature(ctx)
	if err != nil {
		return err
	}
	power, err := client.Power(ctx)
	if err != nil {
		return err
	}
	modeCode, err := client.ModeCode(ctx)
	if err != nil {
		return err
	}

	// The setpoint read is tolerated separately: in fan and
	// dehumidify modes the appliance has no setpoint at all, and
	// that must not suppress the readings that did succeed.
	targetRaw, targetErr := client.TargetTemperature(ctx)

	if IsNumeric(roomRaw) {
		l.notify(PropRoomTemperature, numericValue(roomRaw))
	} else {
		l.logger.Debug("room temperature unavailable", "thing_id", l.id, "raw", fmt.Sprintf("%v", roomRaw))
	}
	if targetErr == nil && IsNumeric(targetRaw) {
		l.notify(PropTargetTemperature, numericValue(targetRaw))
	}
	l.notify(PropMode, StringValue(string(DecodeMode(power, modeCode))))
	l.notify(PropPower, BooleanValue(power != 0))

	l.record(ctx)
	return nil
}

func (l *SyncLoop) pollCondenser(ctx context.Context, client Client) error {
	outsideRaw, err := client.OutsideTemperature(ctx)
	if err != nil {
		return err
	}
	if IsNumeric(outsideRaw) {
		l.notify(PropOutsideTemperature, numericValue(outsideRaw))
	} else {
		l.logger.Debug("outside temperature unavailable", "thing_id", l.id, "raw", fmt.Sprintf("%v", outsideRaw))
	}

	l.record(ctx)
	return nil
}

// notify caches the value for snapshots and forwards it to the sink.
func (l *SyncLoop) notify(property string, value Value) {
	l.mu.Lock()
	l.values[property] = value
	l.mu.Unlock()

	l.sink.NotifyExternalUpdate(l.id, property, value)
}

func (l *SyncLoop) record(ctx context.Context) {
	if l.recorder == nil {
		return
	}
	l.recorder.RecordPoll(ctx, l.id, l.Values())
}

// Values returns a copy of the last notified property values.
func (l *SyncLoop) Values() map[string]Value {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]Value, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// Status is a point-in-time view of one loop, for the status API.
type Status struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Address    string         `json:"address"`
	Role       Role           `json:"role"`
	State      string         `json:"state"`
	Properties map[string]any `json:"properties"`
}

// Snapshot returns the loop's current status.
func (l *SyncLoop) Snapshot() Status {
	values := l.Values()
	props := make(map[string]any, len(values))
	for k, v := range values {
		props[k] = v.Interface()
	}
	return Status{
		ID:         l.id,
		Title:      l.title,
		Address:    l.address,
		Role:       l.role,
		State:      l.State().String(),
		Properties: props,
	}
}

// Apply executes one command against the appliance, synchronously.
//
// A fresh device handle is built per call. Apply deliberately does not
// push the written value back through the sink: the next poll reads
// the appliance's actual state, which is the only state that counts.
func (l *SyncLoop) Apply(kind CommandKind, value Value) error {
	ctx := context.Background()
	client := l.factory(l.address)

	switch kind {
	case CommandSetTargetTemperature:
		if value.Kind() != KindNumber {
			return fmt.Errorf("%w: %s wants a number, got %s", ErrBadValue, kind, value.Kind())
		}
		l.logger.Info("setting target temperature", "thing_id", l.id, "celsius", value.Number())
		return client.SetTargetTemperature(ctx, value.Number())

	case CommandSetPower:
		if value.Kind() != KindBoolean {
			return fmt.Errorf("%w: %s wants a boolean, got %s", ErrBadValue, kind, value.Kind())
		}
		on := 0
		if value.Boolean() {
			on = 1
		}
		l.logger.Info("setting power", "thing_id", l.id, "on", value.Boolean())
		return client.SetPower(ctx, on)

	case CommandSetMode:
		if value.Kind() != KindString {
			return fmt.Errorf("%w: %s wants a string, got %s", ErrBadValue, kind, value.Kind())
		}
		mode, err := ParseMode(value.Str())
		if err != nil {
			return err
		}
		l.logger.Info("setting mode", "thing_id", l.id, "mode", string(mode))
		power, modeCode := EncodeMode(mode)
		if power != nil {
			return client.SetPower(ctx, *power)
		}
		return client.SetModeCode(ctx, *modeCode)

	default:
		return fmt.Errorf("%w: %v", ErrUnknownCommand, kind)
	}
}
