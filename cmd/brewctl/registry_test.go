package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/brewlink/internal/protocol"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		words []string
		want  protocol.Command
		frame string
	}{
		{[]string{"reset"}, protocol.Reset{}, "Z"},
		{[]string{"firmware"}, protocol.GetFirmwareVersion{}, "X"},
		{[]string{"boil-temp"}, protocol.GetBoilTemperature{}, "M"},
		{[]string{"boil-temp", "99.5"}, protocol.SetLocalBoilTemperature{Temperature: 99.5}, "E99.5"},
		{[]string{"heat"}, protocol.ToggleHeatActive{}, "H"},
		{[]string{"HEAT", "on"}, protocol.SetHeatActive{Active: true}, "K1"},
		{[]string{"pump", "off"}, protocol.SetPumpActive{Active: false}, "L0"},
		{[]string{"delayed-heat", "5"}, protocol.EnableDelayedHeatTimer{Minutes: 5}, "B5,0"},
		{[]string{"delayed-heat", "5", "30"}, protocol.EnableDelayedHeatTimer{Minutes: 5, Seconds: 30}, "B5,30"},
		{[]string{"timer", "10"}, protocol.UpdateActiveTimer{Delay: protocol.DelayMinutes(10)}, "S10"},
		{[]string{"timer", "10", "30"}, protocol.UpdateActiveTimer{Delay: protocol.DelayMinutesSeconds(10, 30)}, "W10,30"},
		{[]string{"timer", "10", "0"}, protocol.UpdateActiveTimer{Delay: protocol.DelayMinutesSeconds(10, 0)}, "W10,0"},
		{[]string{"temp", "65.5"}, protocol.SetTargetTemperature{Temperature: 65.5}, "$65.5"},
		{[]string{"temp", "65"}, protocol.SetTargetTemperature{Temperature: 65}, "$65"},
		{[]string{"temp-up"}, protocol.IncrementTargetTemperature{}, "U"},
		{[]string{"finish"}, protocol.CancelOrFinishSession{}, "F"},
		{[]string{"reset-interrupted"}, protocol.ResetRecipeInterrupted{}, "!"},
		{[]string{"sparge-counter", "on"}, protocol.SetSpargeCounterActive{Active: true}, "d1"},
		{[]string{"boil-control", "0"}, protocol.SetBoilControlActive{Active: false}, "e0"},
		{[]string{"manual-power", "yes"}, protocol.SetManualPowerControlActive{Active: true}, "f1"},
		{[]string{"sparge-alert-mode", "false"}, protocol.SetSpargeAlertModeActive{Active: false}, "h0"},
	}

	for _, tt := range tests {
		t.Run(tt.frame, func(t *testing.T) {
			got, err := parseCommand(tt.words)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.frame, protocol.Encode(got).Content())
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		words   []string
		wantErr string
	}{
		{"empty", nil, "missing command name"},
		{"unknown", []string{"brew"}, `unknown command "brew"`},
		{"extra args", []string{"reset", "now"}, "reset: takes no arguments"},
		{"bad switch", []string{"heat", "maybe"}, `invalid switch "maybe"`},
		{"switch required", []string{"boil-control"}, "expected on or off"},
		{"bad temperature", []string{"temp", "hot"}, `invalid temperature "hot"`},
		{"bad minutes", []string{"timer", "-1"}, `invalid minutes "-1"`},
		{"seconds out of range", []string{"timer", "1", "60"}, `invalid seconds "60"`},
		{"too many", []string{"timer", "1", "2", "3"}, "expected minutes and optional seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand(tt.words)
			require.Error(t, err)
			assert.Contains(t, FormatUserError(err), tt.wantErr)
		})
	}
}

func TestParseCommandUnknownIsSentinel(t *testing.T) {
	_, err := parseCommand([]string{"brew"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegistryOrder(t *testing.T) {
	require.Equal(t, 22, registry.Len())
	assert.Equal(t, "reset", registry.Oldest().Key)
	assert.Equal(t, "sparge-alert-mode", registry.Newest().Key)

	// every entry without required arguments builds and encodes
	for pair := registry.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Args != "" && pair.Value.Args[0] == '<' {
			continue
		}
		cmd, err := pair.Value.build(nil)
		require.NoError(t, err, pair.Key)
		assert.NotEmpty(t, protocol.Encode(cmd).Content(), pair.Key)
	}
}
