package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/srg/brewlink/internal/protocol"
)

// event is one decoded record or one decode failure, as queued for output
type event struct {
	n   protocol.Notification
	err error
}

// formatter renders events as text or JSON lines
type formatter struct {
	json bool
	tag  *color.Color
	fail *color.Color
}

func newFormatter(out io.Writer, asJSON bool) *formatter {
	f := &formatter{
		json: asJSON,
		tag:  color.New(color.FgCyan, color.Bold),
		fail: color.New(color.FgRed),
	}
	if !isTerminal(out) {
		f.tag.DisableColor()
		f.fail.DisableColor()
	}
	return f
}

func (f *formatter) write(w io.Writer, ev event) error {
	if f.json {
		return json.NewEncoder(w).Encode(jsonEvent(ev))
	}
	if ev.err != nil {
		_, err := fmt.Fprintf(w, "%s %v\n", f.fail.Sprint("!"), ev.err)
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", f.tag.Sprint(string(ev.n.Tag())), describe(ev.n))
	return err
}

type jsonLine struct {
	Tag   string                `json:"tag,omitempty"`
	Kind  string                `json:"kind"`
	Data  protocol.Notification `json:"data,omitempty"`
	Error string                `json:"error,omitempty"`
}

func jsonEvent(ev event) jsonLine {
	if ev.err != nil {
		return jsonLine{Kind: "error", Error: ev.err.Error()}
	}
	return jsonLine{Tag: string(ev.n.Tag()), Kind: kindOf(ev.n), Data: ev.n}
}

func kindOf(n protocol.Notification) string {
	switch n.(type) {
	case protocol.Temp:
		return "temp"
	case protocol.DelayedHeatTimer:
		return "delayed_heat_timer"
	case protocol.Status1:
		return fmt.Sprintf("heat %s pump %s auto %s stage-ramp %s stage %d interaction %s (code %d) delayed-heat %s",
			onOff(v.HeatActive), onOff(v.PumpActive), onOff(v.AutoModeActive), onOff(v.StageRampActive), v.StageNumber,
			onOff(v.InteractionModeActive), v.InteractionCode, onOff(v.DelayedHeatModeActive))
	case protocol.Status2:
		return fmt.Sprintf("heat power %d%% timer-paused %s step-mash %s recipe-interrupted %s manual-power %s sparge-alert %s",
			v.HeatPowerOutputPercentage, onOff(v.TimerPaused), onOff(v.StepMashMode), onOff(v.RecipeInterrupted),
			onOff(v.ManualPowerMode), onOff(v.SpargeWaterAlertDisplayed))
	case protocol.Interaction:
		return "interaction"
	case protocol.Boil:
		return "boil"
	case protocol.VoltageAndUnits:
		return "voltage_and_units"
	case protocol.FirmwareVersion:
		return "firmware_version"
	case protocol.Other:
		return "other"
	}
	return "unknown"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// describe renders n as one human-readable line
func describe(n protocol.Notification) string {
	switch v := n.(type) {
	case protocol.Temp:
		return fmt.Sprintf("temperature %.1f° (target %.1f°)", v.Current, v.Desired)
	case protocol.DelayedHeatTimer:
		if !v.Active {
			return "delayed heat timer inactive"
		}
		return fmt.Sprintf("delayed heat timer %s remaining of %d min", v.Remaining(), v.TotalStartTime)
	case protocol.Status1:
		return fmt.Sprintf("heat %s pump %s auto %s step-ramp %s interaction %s delayed-heat %s auto-heat %s recipe %s",
			onOff(v.HeatActive), onOff(v.PumpActive), onOff(v.AutoModeActive), onOff(v.StepRampActive),
			onOff(v.InteractionModeActive), onOff(v.DelayedHeatModeActive), onOff(v.AutoHeatModeActive), onOff(v.RecipeModeActive))
	case protocol.Status2:
		return fmt.Sprintf("heat power %d%% control %s sparge counter %s sparge alert %s boil %s",
			v.HeatPowerOutputPercentage, onOff(v.HeatPowerOutputControlActive), onOff(v.SpargeCounterActive),
			onOff(v.SpargeAlertModeActive), onOff(v.BoilControlActive))
	case protocol.Interaction:
		return fmt.Sprintf("interaction code %d", v.InteractionCode)
	case protocol.Boil:
		return fmt.Sprintf("boil temperature %.1f°", v.BoilTemperature)
	case protocol.VoltageAndUnits:
		return fmt.Sprintf("supply %s units %s", v.Voltage, v.Units)
	case protocol.FirmwareVersion:
		return "firmware " + v.Version
	case protocol.Other:
		return fmt.Sprintf("unrecognized payload %q", v.Payload)
	}
	return fmt.Sprintf("%+v", n)
}
