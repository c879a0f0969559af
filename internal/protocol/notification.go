package protocol

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// RawRecord is one complete notification record as cut by the reassembly buffer
type RawRecord [NotificationFrameSize]byte

// Bytes returns the record as a slice
func (r RawRecord) Bytes() []byte {
	return r[:]
}

// Notification is one decoded appliance event.
// The set is sealed: only types in this package implement it.
type Notification interface {
	// Tag returns the leading record character that selected this variant
	Tag() rune
	notification()
}

// InteractionCode identifies the prompt the appliance is showing
type InteractionCode uint8

// Voltage is the appliance supply voltage
type Voltage uint8

const (
	V230 Voltage = iota
	V110
)

func (v Voltage) String() string {
	if v == V110 {
		return "110V"
	}
	return "230V"
}

// MarshalText renders the voltage as its label in JSON output
func (v Voltage) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Units is the temperature scale the appliance reports in
type Units uint8

const (
	Fahrenheit Units = iota
	Celsius
)

func (u Units) String() string {
	if u == Celsius {
		return "celsius"
	}
	return "fahrenheit"
}

// MarshalText renders the units as their label in JSON output
func (u Units) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Temp reports the target and measured temperature (tag X)
type Temp struct {
	Desired float64 `json:"desired"`
	Current float64 `json:"current"`
}

// DelayedHeatTimer reports the active timer (tag T).
// RemainingMinutes and TotalStartTime read as "minutes + 1"; zero means inactive.
type DelayedHeatTimer struct {
	Active           bool   `json:"active"`
	RemainingMinutes uint32 `json:"remaining_minutes"`
	RemainingSeconds uint32 `json:"remaining_seconds"`
	TotalStartTime   uint32 `json:"total_start_time"`
}

// Remaining converts the "minutes + 1" encoding into a duration
func (t DelayedHeatTimer) Remaining() time.Duration {
	if t.RemainingMinutes == 0 {
		return 0
	}
	return time.Duration(t.RemainingMinutes-1)*time.Minute + time.Duration(t.RemainingSeconds)*time.Second
}

// Status1 is the first status record (tag Y)
type Status1 struct {
	HeatActive            bool            `json:"heat_active"`
	PumpActive            bool            `json:"pump_active"`
	AutoModeActive        bool            `json:"auto_mode_active"`
	StageRampActive       bool            `json:"stage_ramp_active"`
	InteractionModeActive bool            `json:"interaction_mode_active"`
	InteractionCode       InteractionCode `json:"interaction_code"`
	StageNumber           uint8           `json:"stage_number"`
	DelayedHeatModeActive bool            `json:"delayed_heat_mode_active"`
}

// Status2 is the second status record (tag W)
type Status2 struct {
	HeatPowerOutputPercentage uint8 `json:"heat_power_output_percentage"`
	TimerPaused               bool  `json:"timer_paused"`
	StepMashMode              bool  `json:"step_mash_mode"`
	RecipeInterrupted         bool  `json:"recipe_interrupted"`
	ManualPowerMode           bool  `json:"manual_power_mode"`
	SpargeWaterAlertDisplayed bool  `json:"sparge_water_alert_displayed"`
}

// Interaction (tag I)
type Interaction struct {
	InteractionCode InteractionCode `json:"interaction_code"`
}

// Boil reports the configured boil temperature (tag C)
type Boil struct {
	BoilTemperature float64 `json:"boil_temperature"`
}

// VoltageAndUnits (tag V)
type VoltageAndUnits struct {
	Voltage Voltage `json:"voltage"`
	Units   Units   `json:"units"`
}

// FirmwareVersion (tag F)
type FirmwareVersion struct {
	Version string `json:"firmware_version"`
}

// Other is any record whose tag is not recognized. It is not an error.
type Other struct {
	Code    rune   `json:"tag"`
	Payload string `json:"payload"`
}

func (Temp) Tag() rune             { return 'X' }
func (DelayedHeatTimer) Tag() rune { return 'T' }
func (Status1) Tag() rune          { return 'Y' }
func (Status2) Tag() rune          { return 'W' }
func (Interaction) Tag() rune      { return 'I' }
func (Boil) Tag() rune             { return 'C' }
func (VoltageAndUnits) Tag() rune  { return 'V' }
func (FirmwareVersion) Tag() rune  { return 'F' }
func (o Other) Tag() rune          { return o.Code }

func (Temp) notification()             {}
func (DelayedHeatTimer) notification() {}
func (Status1) notification()          {}
func (Status2) notification()          {}
func (Interaction) notification()      {}
func (Boil) notification()             {}
func (VoltageAndUnits) notification()  {}
func (FirmwareVersion) notification()  {}
func (Other) notification()            {}

// Decode parses one notification record.
//
// Trailing spaces and NULs are ignored. Surplus fields past the schema are
// ignored. A failure is returned as a *DecodeError and concerns this record only.
func Decode(record []byte) (Notification, error) {
	if !utf8.Valid(record) {
		return nil, &DecodeError{Kind: InvalidEncoding, Record: bytes.Clone(record)}
	}

	text := strings.TrimRight(string(record), " \x00")
	if text == "" {
		return nil, &DecodeError{Kind: MalformedField, Field: "tag", Record: bytes.Clone(record)}
	}

	tag, size := utf8.DecodeRuneInString(text)
	rest := text[size:]

	f := &fieldReader{record: record, parts: strings.Split(rest, ",")}
	var n Notification

	switch tag {
	case 'X':
		n = Temp{
			Desired: f.float("desired"),
			Current: f.float("current"),
		}
	case 'T':
		n = DelayedHeatTimer{
			Active:           f.bool("active"),
			RemainingMinutes: f.uint32("remaining_minutes"),
			TotalStartTime:   f.uint32("total_start_time"),
			RemainingSeconds: f.uint32("remaining_seconds"),
		}
	case 'Y':
		n = Status1{
			HeatActive:            f.bool("heat_active"),
			PumpActive:            f.bool("pump_active"),
			AutoModeActive:        f.bool("auto_mode_active"),
			StageRampActive:       f.bool("stage_ramp_active"),
			InteractionModeActive: f.bool("interaction_mode_active"),
			InteractionCode:       InteractionCode(f.uint8("interaction_code")),
			StageNumber:           f.uint8("stage_number"),
			DelayedHeatModeActive: f.bool("delayed_heat_mode_active"),
		}
	case 'W':
		n = Status2{
			HeatPowerOutputPercentage: f.uint8("heat_power_output_percentage"),
			TimerPaused:               f.bool("timer_paused"),
			StepMashMode:              f.bool("step_mash_mode"),
			RecipeInterrupted:         f.bool("recipe_interrupted"),
			ManualPowerMode:           f.bool("manual_power_mode"),
			SpargeWaterAlertDisplayed: f.bool("sparge_water_alert_displayed"),
		}
	case 'I':
		n = Interaction{InteractionCode: InteractionCode(f.uint8("interaction_code"))}
	case 'C':
		n = Boil{BoilTemperature: f.float("boil_temperature")}
	case 'F':
		return FirmwareVersion{Version: strings.TrimSpace(rest)}, nil
	case 'V':
		v := VoltageAndUnits{Voltage: V230, Units: Fahrenheit}
		if f.bool("voltage_is_110") {
			v.Voltage = V110
		}
		if f.bool("units_are_celsius") {
			v.Units = Celsius
		}
		n = v
	default:
		return Other{Code: tag, Payload: rest}, nil
	}

	if f.err != nil {
		return nil, f.err
	}
	return n, nil
}

var errMissingField = errors.New("field missing")

// fieldReader walks positional fields and keeps the first failure
type fieldReader struct {
	record []byte
	parts  []string
	pos    int
	err    error
}

func (r *fieldReader) next(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	if r.pos >= len(r.parts) {
		r.fail(name, errMissingField)
		return "", false
	}
	s := strings.TrimSpace(r.parts[r.pos])
	r.pos++
	return s, true
}

func (r *fieldReader) fail(name string, err error) {
	r.err = &DecodeError{Kind: MalformedField, Field: name, Record: bytes.Clone(r.record), Err: err}
}

func (r *fieldReader) uint(name string, bits int) uint64 {
	s, ok := r.next(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		r.fail(name, err)
		return 0
	}
	return v
}

func (r *fieldReader) uint8(name string) uint8 {
	return uint8(r.uint(name, 8))
}

func (r *fieldReader) uint32(name string) uint32 {
	return uint32(r.uint(name, 32))
}

// bool accepts any uint8; only 1 is true
func (r *fieldReader) bool(name string) bool {
	return r.uint8(name) == 1
}

func (r *fieldReader) float(name string) float64 {
	s, ok := r.next(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(name, err)
		return 0
	}
	return v
}
