package main

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/brewlink/internal/protocol"
)

// commandEntry describes one appliance command as typed on the command line
type commandEntry struct {
	Args    string // argument synopsis
	Summary string
	Frame   string // frame prefix, for the listing
	build   func(args []string) (protocol.Command, error)
}

// registry maps command names to builders, in the order `commands` lists them
var registry = orderedmap.New[string, commandEntry]()

func register(name, args, frame, summary string, build func([]string) (protocol.Command, error)) {
	registry.Set(name, commandEntry{Args: args, Summary: summary, Frame: frame, build: build})
}

func fixed(cmd protocol.Command) func([]string) (protocol.Command, error) {
	return func(args []string) (protocol.Command, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("takes no arguments")
		}
		return cmd, nil
	}
}

// toggleOr builds the toggle command without arguments, set(on) with one
func toggleOr(toggle protocol.Command, set func(bool) protocol.Command) func([]string) (protocol.Command, error) {
	return func(args []string) (protocol.Command, error) {
		switch len(args) {
		case 0:
			return toggle, nil
		case 1:
			on, err := parseSwitch(args[0])
			if err != nil {
				return nil, err
			}
			return set(on), nil
		default:
			return nil, fmt.Errorf("expected at most one argument")
		}
	}
}

func switched(set func(bool) protocol.Command) func([]string) (protocol.Command, error) {
	return func(args []string) (protocol.Command, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected on or off")
		}
		on, err := parseSwitch(args[0])
		if err != nil {
			return nil, err
		}
		return set(on), nil
	}
}

func temperature(set func(float64) protocol.Command) func([]string) (protocol.Command, error) {
	return func(args []string) (protocol.Command, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected one temperature")
		}
		t, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid temperature %q", args[0])
		}
		return set(t), nil
	}
}

func init() {
	register("reset", "", "Z", "Reset the controller", fixed(protocol.Reset{}))
	register("firmware", "", "X", "Request the firmware version", fixed(protocol.GetFirmwareVersion{}))
	register("voltage", "", "g", "Request supply voltage and units", fixed(protocol.GetVoltageAndUnits{}))
	register("boil-temp", "[celsius]", "M / E", "Request the boil temperature, or set it locally",
		func(args []string) (protocol.Command, error) {
			if len(args) == 0 {
				return protocol.GetBoilTemperature{}, nil
			}
			return temperature(func(t float64) protocol.Command {
				return protocol.SetLocalBoilTemperature{Temperature: t}
			})(args)
		})
	register("heat", "[on|off]", "H / K", "Toggle or set the heater",
		toggleOr(protocol.ToggleHeatActive{}, func(on bool) protocol.Command { return protocol.SetHeatActive{Active: on} }))
	register("pump", "[on|off]", "P / L", "Toggle or set the pump",
		toggleOr(protocol.TogglePumpActive{}, func(on bool) protocol.Command { return protocol.SetPumpActive{Active: on} }))
	register("delayed-heat", "<minutes> [seconds]", "B", "Start heating after a delay", parseDelayedHeat)
	register("timer", "<minutes> [seconds]", "S / W", "Change the remaining time of the active timer", parseTimer)
	register("timer-cancel", "", "C", "Cancel the active timer", fixed(protocol.CancelActiveTimer{}))
	register("timer-pause", "", "G", "Pause or resume the active timer", fixed(protocol.PauseOrResumeActiveTimer{}))
	register("temp", "<celsius>", "$", "Set the target temperature",
		temperature(func(t float64) protocol.Command { return protocol.SetTargetTemperature{Temperature: t} }))
	register("temp-up", "", "U", "Raise the target temperature one step", fixed(protocol.IncrementTargetTemperature{}))
	register("temp-down", "", "D", "Lower the target temperature one step", fixed(protocol.DecrementTargetTemperature{}))
	register("dismiss-boil-alert", "", "A", "Dismiss a boil addition alert", fixed(protocol.DismissBoilAdditionAlert{}))
	register("finish", "", "F", "Cancel or finish the session", fixed(protocol.CancelOrFinishSession{}))
	register("set", "", "T", "Press the SET button", fixed(protocol.PressSet{}))
	register("disable-sparge-alert", "", "V", "Disable the sparge water alert", fixed(protocol.DisableSpargeWaterAlert{}))
	register("reset-interrupted", "", "!", "Clear the recipe interrupted flag", fixed(protocol.ResetRecipeInterrupted{}))
	register("sparge-counter", "<on|off>", "d", "Enable or disable the sparge counter",
		switched(func(on bool) protocol.Command { return protocol.SetSpargeCounterActive{Active: on} }))
	register("boil-control", "<on|off>", "e", "Enable or disable boil control",
		switched(func(on bool) protocol.Command { return protocol.SetBoilControlActive{Active: on} }))
	register("manual-power", "<on|off>", "f", "Enable or disable manual power control",
		switched(func(on bool) protocol.Command { return protocol.SetManualPowerControlActive{Active: on} }))
	register("sparge-alert-mode", "<on|off>", "h", "Enable or disable sparge alert mode",
		switched(func(on bool) protocol.Command { return protocol.SetSpargeAlertModeActive{Active: on} }))
}

// parseCommand resolves words[0] in the registry and builds the command from
// the remaining words
func parseCommand(words []string) (protocol.Command, error) {
	if len(words) == 0 {
		return nil, &argError{command: "command", msg: "missing command name"}
	}

	name := strings.ToLower(words[0])
	entry, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (see 'brewctl commands')", ErrUnknownCommand, words[0])
	}

	cmd, err := entry.build(words[1:])
	if err != nil {
		return nil, &argError{command: name, msg: fmt.Sprintf("%s (usage: %s %s)", err, name, entry.Args)}
	}
	return cmd, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q: use on or off", s)
}

func parseMinutesSeconds(args []string) (uint32, uint8, bool, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, 0, false, fmt.Errorf("expected minutes and optional seconds")
	}
	m, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid minutes %q", args[0])
	}
	if len(args) == 1 {
		return uint32(m), 0, false, nil
	}
	sec, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil || sec > 59 {
		return 0, 0, false, fmt.Errorf("invalid seconds %q", args[1])
	}
	return uint32(m), uint8(sec), true, nil
}

func parseDelayedHeat(args []string) (protocol.Command, error) {
	m, s, _, err := parseMinutesSeconds(args)
	if err != nil {
		return nil, err
	}
	return protocol.EnableDelayedHeatTimer{Minutes: m, Seconds: s}, nil
}

func parseTimer(args []string) (protocol.Command, error) {
	m, s, withSeconds, err := parseMinutesSeconds(args)
	if err != nil {
		return nil, err
	}
	if withSeconds {
		return protocol.UpdateActiveTimer{Delay: protocol.DelayMinutesSeconds(m, s)}, nil
	}
	return protocol.UpdateActiveTimer{Delay: protocol.DelayMinutes(m)}, nil
}
