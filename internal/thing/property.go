package thing

import "context"

// Role selects which property set a synchronized appliance exposes.
//
// An indoor unit carries the climate controls; a condenser unit only
// reports the outside temperature measured at the outdoor heat
// exchanger. The same physical appliance can be mirrored twice, once
// per role, when its outdoor sensor is of interest.
type Role string

const (
	RoleIndoorUnit Role = "indoor"
	RoleCondenser  Role = "condenser"
)

// Property names as published on the external surface.
const (
	PropRoomTemperature    = "room_temperature"
	PropTargetTemperature  = "target_temperature"
	PropOutsideTemperature = "outside_temperature"
	PropMode               = "mode"
	PropPower              = "power"
)

// CommandKind identifies a mutation a consumer may request on a
// synchronized appliance.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandSetTargetTemperature
	CommandSetPower
	CommandSetMode
)

func (k CommandKind) String() string {
	switch k {
	case CommandSetTargetTemperature:
		return "set_target_temperature"
	case CommandSetPower:
		return "set_power"
	case CommandSetMode:
		return "set_mode"
	default:
		return "none"
	}
}

// Property describes one observable value on a thing.
type Property struct {
	Name     string
	Title    string
	Type     ValueKind
	Unit     string
	ReadOnly bool
	Enum     []string

	// Command is the mutation a write to this property translates
	// into. CommandNone for read-only properties.
	Command CommandKind
}

// Applier accepts commands on behalf of one synchronized appliance.
// The device handle is created per call, never held between calls.
type Applier interface {
	Apply(kind CommandKind, value Value) error
}

// Definition is everything a property sink needs to host a thing:
// identity, the property set, and where to dispatch writes.
type Definition struct {
	ID         string
	Title      string
	Properties []Property
	Applier    Applier
}

// Property looks up a property by external name.
func (d Definition) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Sink hosts things on an external surface. Implementations publish
// property updates outward and dispatch consumer writes back through
// the registered Applier.
type Sink interface {
	// Register announces a thing and its property set. Must be
	// called before the first NotifyExternalUpdate for that thing.
	Register(def Definition) error

	// NotifyExternalUpdate pushes a fresh property value outward.
	// Implementations deduplicate no-op updates and silently drop
	// notifications after Stop.
	NotifyExternalUpdate(thingID, property string, value Value)

	// Stop ceases accepting notifications and writes. Idempotent.
	Stop()
}

// Recorder observes completed poll cycles, for history or telemetry
// backends. Optional: loops run fine without one.
type Recorder interface {
	RecordPoll(ctx context.Context, thingID string, values map[string]Value)
}

// indoorProperties is the property set exposed for an indoor unit.
func indoorProperties() []Property {
	return []Property{
		{
			Name:     PropRoomTemperature,
			Title:    "Room Temperature",
			Type:     KindNumber,
			Unit:     "celsius",
			ReadOnly: true,
		},
		{
			Name:    PropTargetTemperature,
			Title:   "Target Temperature",
			Type:    KindNumber,
			Unit:    "celsius",
			Command: CommandSetTargetTemperature,
		},
		{
			Name:    PropMode,
			Title:   "Mode",
			Type:    KindString,
			Enum:    Modes(),
			Command: CommandSetMode,
		},
		{
			Name:    PropPower,
			Title:   "Power",
			Type:    KindBoolean,
			Command: CommandSetPower,
		},
	}
}

// condenserProperties is the property set exposed for a condenser.
func condenserProperties() []Property {
	return []Property{
		{
			Name:     PropOutsideTemperature,
			Title:    "Outside Temperature",
			Type:     KindNumber,
			Unit:     "celsius",
			ReadOnly: true,
		},
	}
}
