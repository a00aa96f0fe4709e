package thing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClient is a scriptable device handle.
type fakeClient struct {
	mu sync.Mutex

	kind, label string
	identityErr error

	inside    any
	insideErr error
	outside   any
	outErr    error
	target    any
	targetErr error
	power     int
	powerErr  error
	modeCode  int
	modeErr   error

	setErr   error
	setCalls []string
}

func (c *fakeClient) Identity(context.Context) (string, string, error) {
	return c.kind, c.label, c.identityErr
}

func (c *fakeClient) InsideTemperature(context.Context) (any, error) {
	return c.inside, c.insideErr
}

func (c *fakeClient) OutsideTemperature(context.Context) (any, error) {
	return c.outside, c.outErr
}

func (c *fakeClient) TargetTemperature(context.Context) (any, error) {
	return c.target, c.targetErr
}

func (c *fakeClient) Power(context.Context) (int, error) {
	return c.power, c.powerErr
}

func (c *fakeClient) ModeCode(context.Context) (int, error) {
	return c.modeCode, c.modeErr
}

func (c *fakeClient) recordSet(call string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls = append(c.setCalls, call)
	return c.setErr
}

func (c *fakeClient) SetTargetTemperature(_ context.Context, celsius float64) error {
	return c.recordSet(fmt.Sprintf("stemp=%.1f", celsius))
}

func (c *fakeClient) SetPower(_ context.Context, on int) error {
	return c.recordSet(fmt.Sprintf("pow=%d", on))
}

func (c *fakeClient) SetModeCode(_ context.Context, code int) error {
	return c.recordSet(fmt.Sprintf("mode=%d", code))
}

func (c *fakeClient) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.setCalls))
	copy(out, c.setCalls)
	return out
}

// fakeSink records registrations and notifications.
type fakeSink struct {
	mu          sync.Mutex
	defs        []Definition
	updates     []string
	values      map[string]Value
	stopCount   int
	updateCh    chan string
	registerErr error
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		values:   make(map[string]Value),
		updateCh: make(chan string, 64),
	}
}

func (s *fakeSink) Register(def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registerErr != nil {
		return s.registerErr
	}
	s.defs = append(s.defs, def)
	return nil
}

func (s *fakeSink) NotifyExternalUpdate(thingID, property string, value Value) {
	s.mu.Lock()
	s.updates = append(s.updates, property)
	s.values[property] = value
	s.mu.Unlock()
	select {
	case s.updateCh <- property:
	default:
	}
}

func (s *fakeSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCount++
}

func (s *fakeSink) value(property string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[property]
	return v, ok
}

func (s *fakeSink) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func newTestLoop(t *testing.T, client *fakeClient, snk Sink, role Role) *SyncLoop {
	t.Helper()
	if client.kind == "" {
		client.kind = "aircon"
	}
	if client.label == "" {
		client.label = "Office"
	}
	loop, err := NewSyncLoop(context.Background(), LoopOptions{
		Address:  "192.168.13.30",
		Role:     role,
		Interval: 10 * time.Millisecond,
		Factory:  func(string) Client { return client },
		Sink:     snk,
	})
	if err != nil {
		t.Fatalf("NewSyncLoop() error = %v", err)
	}
	return loop
}

func TestNewSyncLoop_Identity(t *testing.T) {
	t.Run("indoor unit id and title", func(t *testing.T) {
		loop := newTestLoop(t, &fakeClient{kind: "aircon", label: "Office"}, newFakeSink(), RoleIndoorUnit)
		if loop.ID() != "daikin-192.168.13.30" {
			t.Errorf("ID() = %q", loop.ID())
		}
		if loop.Title() != "Daikin aircon Office" {
			t.Errorf("Title() = %q", loop.Title())
		}
	})

	t.Run("condenser id and title", func(t *testing.T) {
		loop := newTestLoop(t, &fakeClient{kind: "aircon", label: "Office"}, newFakeSink(), RoleCondenser)
		if loop.ID() != "daikin-192.168.13.30-condenser" {
			t.Errorf("ID() = %q", loop.ID())
		}
		if loop.Title() != "Daikin aircon Office Condenser" {
			t.Errorf("Title() = %q", loop.Title())
		}
	})

	t.Run("identity failure wraps ErrIdentity", func(t *testing.T) {
		_, err := NewSyncLoop(context.Background(), LoopOptions{
			Address: "192.168.13.99",
			Factory: func(string) Client { return &fakeClient{identityErr: errors.New("unreachable")} },
			Sink:    newFakeSink(),
		})
		if !errors.Is(err, ErrIdentity) {
			t.Errorf("NewSyncLoop() error = %v, want ErrIdentity", err)
		}
	})
}

func TestSyncLoop_PollIndoor(t *testing.T) {
	client := &fakeClient{inside: 24.0, target: 22.5, power: 1, modeCode: 3}
	snk := newFakeSink()
	loop := newTestLoop(t, client, snk, RoleIndoorUnit)

	if err := loop.poll(); err != nil {
		t.Fatalf("poll() error = %v", err)
	}

	if v, ok := snk.value(PropRoomTemperature); !ok || v.Number() != 24.0 {
		t.Errorf("room_temperature = %v, %v, want 24.0", v, ok)
	}
	if v, ok := snk.value(PropTargetTemperature); !ok || v.Number() != 22.5 {
		t.Errorf("target_temperature = %v, %v, want 22.5", v, ok)
	}
	if v, ok := snk.value(PropMode); !ok || v.Str() != "cool" {
		t.Errorf("mode = %v, %v, want cool", v, ok)
	}
	if v, ok := snk.value(PropPower); !ok || !v.Boolean() {
		t.Errorf("power = %v, %v, want true", v, ok)
	}
}

func TestSyncLoop_PollCondenser(t *testing.T) {
	client := &fakeClient{outside: 31.5}
	snk := newFakeSink()
	loop := newTestLoop(t, client, snk, RoleCondenser)

	if err := loop.poll(); err != nil {
		t.Fatalf("poll() error = %v", err)
	}

	if v, ok := snk.value(PropOutsideTemperature); !ok || v.Number() != 31.5 {
		t.Errorf("outside_temperature = %v, %v, want 31.5", v, ok)
	}
	if snk.updateCount() != 1 {
		t.Errorf("updateCount = %d, want 1", snk.updateCount())
	}
}

func TestSyncLoop_PollErrors(t *testing.T) {
	t.Run("read failure suppresses all notifications", func(t *testing.T) {
		client := &fakeClient{insideErr: errors.New("connection refused")}
		snk := newFakeSink()
		loop := newTestLoop(t, client, snk, RoleIndoorUnit)

		if err := loop.poll(); err == nil {
			t.Fatal("poll() error = nil, want read error")
		}
		if snk.updateCount() != 0 {
			t.Errorf("updateCount = %d, want 0", snk.updateCount())
		}
	})

	t.Run("setpoint read failure is tolerated", func(t *testing.T) {
		client := &fakeClient{inside: 24.0, targetErr: errors.New("timeout"), power: 1, modeCode: 6}
		snk := newFakeSink()
		loop := newTestLoop(t, client, snk, RoleIndoorUnit)

		if err := loop.poll(); err != nil {
			t.Fatalf("poll() error = %v", err)
		}
		if _, ok := snk.value(PropTargetTemperature); ok {
			t.Error("target_temperature notified despite read failure")
		}
		if v, ok := snk.value(PropMode); !ok || v.Str() != "fan" {
			t.Errorf("mode = %v, %v, want fan", v, ok)
		}
	})

	t.Run("sensor sentinel suppresses temperature only", func(t *testing.T) {
		client := &fakeClient{inside: "-", target: "M", power: 0, modeCode: 3}
		snk := newFakeSink()
		loop := newTestLoop(t, client, snk, RoleIndoorUnit)

		if err := loop.poll(); err != nil {
			t.Fatalf("poll() error = %v", err)
		}
		if _, ok := snk.value(PropRoomTemperature); ok {
			t.Error("room_temperature notified for sentinel reading")
		}
		if _, ok := snk.value(PropTargetTemperature); ok {
			t.Error("target_temperature notified for sentinel reading")
		}
		if v, ok := snk.value(PropMode); !ok || v.Str() != "off" {
			t.Errorf("mode = %v, %v, want off", v, ok)
		}
		if v, ok := snk.value(PropPower); !ok || v.Boolean() {
			t.Errorf("power = %v, %v, want false", v, ok)
		}
	})
}

func TestSyncLoop_RunAndCancel(t *testing.T) {
	client := &fakeClient{inside: 24.0, target: 22.0, power: 1, modeCode: 3}
	snk := newFakeSink()
	loop := newTestLoop(t, client, snk, RoleIndoorUnit)

	if err := loop.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if loop.State() != StateRunning {
		t.Errorf("State() = %v, want running", loop.State())
	}
	if err := loop.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	// Wait for at least one full poll to land.
	select {
	case <-snk.updateCh:
	case <-time.After(time.Second):
		t.Fatal("no property update within 1s")
	}

	done := make(chan struct{})
	go func() {
		loop.CancelAndJoin()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CancelAndJoin did not return within 1s")
	}
	if loop.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", loop.State())
	}

	// Idempotent: a second join returns immediately.
	loop.CancelAndJoin()
}

func TestSyncLoop_KeepsRunningAfterFailedPolls(t *testing.T) {
	client := &fakeClient{insideErr: errors.New("connection refused")}
	snk := newFakeSink()
	loop := newTestLoop(t, client, snk, RoleIndoorUnit)

	if err := loop.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer loop.CancelAndJoin()

	time.Sleep(50 * time.Millisecond)
	if loop.State() != StateRunning {
		t.Errorf("State() = %v after failed polls, want running", loop.State())
	}
	if snk.updateCount() != 0 {
		t.Errorf("updateCount = %d after failed polls, want 0", snk.updateCount())
	}
}

func TestSyncLoop_CancelBeforeStart(t *testing.T) {
	loop := newTestLoop(t, &fakeClient{}, newFakeSink(), RoleIndoorUnit)

	done := make(chan struct{})
	go func() {
		loop.CancelAndJoin()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CancelAndJoin on unstarted loop did not return")
	}

	if err := loop.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Start() after cancel error = %v, want ErrAlreadyStarted", err)
	}
	if loop.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", loop.State())
	}
}

func TestSyncLoop_Apply(t *testing.T) {
	tests := []struct {
		name     string
		kind     CommandKind
		value    Value
		wantCall string
		wantErr  error
	}{
		{"set target temperature", CommandSetTargetTemperature, NumberValue(22.5), "stemp=22.5", nil},
		{"power on", CommandSetPower, BooleanValue(true), "pow=1", nil},
		{"power off", CommandSetPower, BooleanValue(false), "pow=0", nil},
		{"mode off is a power write", CommandSetMode, StringValue("off"), "pow=0", nil},
		{"mode cool", CommandSetMode, StringValue("cool"), "mode=3", nil},
		{"mode heat", CommandSetMode, StringValue("heat"), "mode=4", nil},
		{"mode dehumid", CommandSetMode, StringValue("dehumid"), "mode=2", nil},
		{"mode fan", CommandSetMode, StringValue("fan"), "mode=6", nil},
		{"mode auto", CommandSetMode, StringValue("auto"), "mode=1", nil},
		{"unknown mode", CommandSetMode, StringValue("turbo"), "", ErrUnknownMode},
		{"temperature wants a number", CommandSetTargetTemperature, StringValue("22"), "", ErrBadValue},
		{"power wants a boolean", CommandSetPower, NumberValue(1), "", ErrBadValue},
		{"mode wants a string", CommandSetMode, NumberValue(3), "", ErrBadValue},
		{"unknown command", CommandNone, NumberValue(0), "", ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			loop := newTestLoop(t, client, newFakeSink(), RoleIndoorUnit)

			err := loop.Apply(tt.kind, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
				}
				if len(client.calls()) != 0 {
					t.Errorf("device written despite error: %v", client.calls())
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			calls := client.calls()
			if len(calls) != 1 || calls[0] != tt.wantCall {
				t.Errorf("device calls = %v, want [%s]", calls, tt.wantCall)
			}
		})
	}
}

// A consumer write landing mid-poll must not deadlock or corrupt the
// snapshot; poll and Apply share nothing but the factory.
func TestSyncLoop_ApplyConcurrentWithPoll(t *testing.T) {
	client := &fakeClient{inside: 24.0, target: 22.0, power: 1, modeCode: 3}
	snk := newFakeSink()
	loop := newTestLoop(t, client, snk, RoleIndoorUnit)

	if err := loop.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := loop.Apply(CommandSetTargetTemperature, NumberValue(21)); err != nil {
				t.Errorf("Apply() error = %v", err)
			}
		}()
	}
	wg.Wait()
	loop.CancelAndJoin()

	if got := len(client.calls()); got != 10 {
		t.Errorf("device write count = %d, want 10", got)
	}
}

func TestSyncLoop_Snapshot(t *testing.T) {
	client := &fakeClient{inside: 24.0, target: 22.5, power: 1, modeCode: 4}
	snk := newFakeSink()
	loop := newTestLoop(t, client, snk, RoleIndoorUnit)

	if err := loop.poll(); err != nil {
		t.Fatalf("poll() error = %v", err)
	}

	status := loop.Snapshot()
	if status.ID != "daikin-192.168.13.30" {
		t.Errorf("ID = %q", status.ID)
	}
	if status.State != "new" {
		t.Errorf("State = %q, want new", status.State)
	}
	if status.Properties[PropMode] != "heat" {
		t.Errorf("mode = %v, want heat", status.Properties[PropMode])
	}
	if status.Properties[PropRoomTemperature] != 24.0 {
		t.Errorf("room_temperature = %v, want 24", status.Properties[PropRoomTemperature])
	}
}
