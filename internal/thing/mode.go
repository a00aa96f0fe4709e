package thing

import "fmt"

// Mode is the semantic operating mode of an indoor unit.
//
// The appliance itself splits this across two raw registers: a power
// flag and a mode code. Mode collapses both into a single enum so that
// consumers never see the raw encoding.
type Mode string

const (
	ModeOff     Mode = "off"
	ModeAuto    Mode = "auto"
	ModeCool    Mode = "cool"
	ModeHeat    Mode = "heat"
	ModeDehumid Mode = "dehumid"
	ModeFan     Mode = "fan"
)

// Raw mode codes as reported by the appliance control endpoint. Auto
// covers several codes (0, 1, 7); 1 is the one the appliance accepts
// when written back.
const (
	modeCodeAuto    = 1
	modeCodeDehumid = 2
	modeCodeCool    = 3
	modeCodeHeat    = 4
	modeCodeFan     = 6
)

// Modes lists every semantic mode, in the order presented to
// consumers.
func Modes() []string {
	return []string{
		string(ModeOff),
		string(ModeAuto),
		string(ModeCool),
		string(ModeHeat),
		string(ModeDehumid),
		string(ModeFan),
	}
}

// ParseMode validates a consumer-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOff, ModeAuto, ModeCool, ModeHeat, ModeDehumid, ModeFan:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// DecodeMode translates the appliance's raw power flag and mode code
// into a semantic mode.
//
// Power wins: a powered-off unit is "off" regardless of the stored
// mode code. Unknown codes map to "auto" rather than erroring, so a
// firmware quirk never stalls a poll cycle.
func DecodeMode(power, modeCode int) Mode {
	if power == 0 {
		return ModeOff
	}
	switch modeCode {
	case modeCodeDehumid:
		return ModeDehumid
	case modeCodeCool:
		return ModeCool
	case modeCodeHeat:
		return ModeHeat
	case modeCodeFan:
		return ModeFan
	default:
		return ModeAuto
	}
}

// EncodeMode translates a semantic mode into the raw register write
// that realises it. Exactly one of the two returns is non-nil: "off"
// becomes a power write, every other mode becomes a mode-code write.
func EncodeMode(m Mode) (power, modeCode *int) {
	if m == ModeOff {
		p := 0
		return &p, nil
	}
	c := modeCodeAuto
	switch m {
	case ModeDehumid:
		c = modeCodeDehumid
	case ModeCool:
		c = modeCodeCool
	case ModeHeat:
		c = modeCodeHeat
	case ModeFan:
		c = modeCodeFan
	}
	return nil, &c
}
