package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one of the closed set of appliance commands declared in this file.
// The set is sealed: only types in this package implement it.
type Command interface {
	command()
}

// Frame is an encoded command: content left-justified, space padded
type Frame [CommandFrameSize]byte

// Bytes returns the frame as a slice suitable for a characteristic write
func (f Frame) Bytes() []byte {
	return f[:]
}

// Content returns the frame text without the trailing padding
func (f Frame) Content() string {
	return strings.TrimRight(string(f[:]), string(padByte))
}

type (
	Reset              struct{}
	GetFirmwareVersion struct{}
	GetVoltageAndUnits struct{}
	GetBoilTemperature struct{}

	ToggleHeatActive struct{}
	SetHeatActive    struct{ Active bool }

	TogglePumpActive struct{}
	SetPumpActive    struct{ Active bool }

	// EnableDelayedHeatTimer starts heating after the delay. The appliance treats
	// minutes as "minutes + 1": {2, 0} runs for one minute, {2, 30} for 1m30s,
	// while {1, 30} and {0, 30} both run for 30 seconds.
	EnableDelayedHeatTimer struct {
		Minutes uint32
		Seconds uint8
	}

	CancelActiveTimer        struct{}
	UpdateActiveTimer        struct{ Delay Delay }
	PauseOrResumeActiveTimer struct{}

	IncrementTargetTemperature struct{}
	DecrementTargetTemperature struct{}
	SetTargetTemperature       struct{ Temperature float64 }
	SetLocalBoilTemperature    struct{ Temperature float64 }

	DismissBoilAdditionAlert struct{}
	CancelOrFinishSession    struct{}
	PressSet                 struct{}
	DisableSpargeWaterAlert  struct{}
	ResetRecipeInterrupted   struct{}

	SetSpargeCounterActive      struct{ Active bool }
	SetBoilControlActive        struct{ Active bool }
	SetManualPowerControlActive struct{ Active bool }
	SetSpargeAlertModeActive    struct{ Active bool }

	// MashStep is one step line of a recipe upload. Unlike the other commands it
	// carries no tag.
	MashStep struct {
		Temperature float64
		Minutes     uint32
	}
)

// Delay is the new remaining time for UpdateActiveTimer
type Delay struct {
	Minutes     uint32
	Seconds     uint8
	withSeconds bool
}

// DelayMinutes builds a whole-minute delay (sent as S{min})
func DelayMinutes(minutes uint32) Delay {
	return Delay{Minutes: minutes}
}

// DelayMinutesSeconds builds a minute and second delay (sent as W{min},{sec})
func DelayMinutesSeconds(minutes uint32, seconds uint8) Delay {
	return Delay{Minutes: minutes, Seconds: seconds, withSeconds: true}
}

// HasSeconds reports whether the delay was built with a seconds component
func (d Delay) HasSeconds() bool {
	return d.withSeconds
}

func (Reset) command()                       {}
func (GetFirmwareVersion) command()          {}
func (GetVoltageAndUnits) command()          {}
func (GetBoilTemperature) command()          {}
func (ToggleHeatActive) command()            {}
func (SetHeatActive) command()               {}
func (TogglePumpActive) command()            {}
func (SetPumpActive) command()               {}
func (EnableDelayedHeatTimer) command()      {}
func (CancelActiveTimer) command()           {}
func (UpdateActiveTimer) command()           {}
func (PauseOrResumeActiveTimer) command()    {}
func (IncrementTargetTemperature) command()  {}
func (DecrementTargetTemperature) command()  {}
func (SetTargetTemperature) command()        {}
func (SetLocalBoilTemperature) command()     {}
func (DismissBoilAdditionAlert) command()    {}
func (CancelOrFinishSession) command()       {}
func (PressSet) command()                    {}
func (DisableSpargeWaterAlert) command()     {}
func (ResetRecipeInterrupted) command()      {}
func (SetSpargeCounterActive) command()      {}
func (SetBoilControlActive) command()        {}
func (SetManualPowerControlActive) command() {}
func (SetSpargeAlertModeActive) command()    {}
func (MashStep) command()                    {}

// Encode serializes a command into its wire frame.
//
// Every defined command fits in a frame for any sane parameter value. A float
// that renders longer than the frame (e.g. 1e300) is a programming error and
// Encode panics with an *EncodingOverflowError.
func Encode(cmd Command) Frame {
	buf := make([]byte, 0, CommandFrameSize)

	switch c := cmd.(type) {
	case Reset:
		buf = append(buf, 'Z')
	case GetFirmwareVersion:
		buf = append(buf, 'X')
	case GetVoltageAndUnits:
		buf = append(buf, 'g')
	case GetBoilTemperature:
		buf = append(buf, 'M')
	case ToggleHeatActive:
		buf = append(buf, 'H')
	case SetHeatActive:
		buf = appendBool(append(buf, 'K'), c.Active)
	case TogglePumpActive:
		buf = append(buf, 'P')
	case SetPumpActive:
		buf = appendBool(append(buf, 'L'), c.Active)
	case EnableDelayedHeatTimer:
		buf = strconv.AppendUint(append(buf, 'B'), uint64(c.Minutes), 10)
		buf = strconv.AppendUint(append(buf, ','), uint64(c.Seconds), 10)
	case CancelActiveTimer:
		buf = append(buf, 'C')
	case UpdateActiveTimer:
		if c.Delay.withSeconds {
			buf = strconv.AppendUint(append(buf, 'W'), uint64(c.Delay.Minutes), 10)
			buf = strconv.AppendUint(append(buf, ','), uint64(c.Delay.Seconds), 10)
		} else {
			buf = strconv.AppendUint(append(buf, 'S'), uint64(c.Delay.Minutes), 10)
		}
	case PauseOrResumeActiveTimer:
		buf = append(buf, 'G')
	case IncrementTargetTemperature:
		buf = append(buf, 'U')
	case DecrementTargetTemperature:
		buf = append(buf, 'D')
	case SetTargetTemperature:
		buf = appendFloat(append(buf, '$'), c.Temperature)
	case SetLocalBoilTemperature:
		buf = appendFloat(append(buf, 'E'), c.Temperature)
	case DismissBoilAdditionAlert:
		buf = append(buf, 'A')
	case CancelOrFinishSession:
		buf = append(buf, 'F')
	case PressSet:
		buf = append(buf, 'T')
	case DisableSpargeWaterAlert:
		buf = append(buf, 'V')
	case ResetRecipeInterrupted:
		buf = append(buf, '!')
	case SetSpargeCounterActive:
		buf = appendBool(append(buf, 'd'), c.Active)
	case SetBoilControlActive:
		buf = appendBool(append(buf, 'e'), c.Active)
	case SetManualPowerControlActive:
		buf = appendBool(append(buf, 'f'), c.Active)
	case SetSpargeAlertModeActive:
		buf = appendBool(append(buf, 'h'), c.Active)
	case MashStep:
		buf = appendFloat(buf, c.Temperature)
		buf = strconv.AppendUint(append(buf, ':'), uint64(c.Minutes), 10)
	default:
		panic(fmt.Sprintf("protocol: unknown command type %T", cmd))
	}

	if len(buf) > CommandFrameSize {
		panic(&EncodingOverflowError{Content: string(buf)})
	}

	var f Frame
	n := copy(f[:], buf)
	for i := n; i < CommandFrameSize; i++ {
		f[i] = padByte
	}
	return f
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, '1')
	}
	return append(buf, '0')
}

// appendFloat renders the shortest decimal that round-trips: 65 for 65.0, 65.5 for 65.5
func appendFloat(buf []byte, v float64) []byte {
	return strconv.AppendFloat(buf, v, 'f', -1, 64)
}
