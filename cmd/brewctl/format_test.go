package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/session"
	"github.com/srg/brewlink/internal/testutils"
	"github.com/srg/brewlink/internal/transport"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		n    protocol.Notification
		want string
	}{
		{protocol.Temp{Desired: 65, Current: 64.3}, "temperature 64.3° (target 65.0°)"},
		{protocol.DelayedHeatTimer{}, "delayed heat timer inactive"},
		{protocol.DelayedHeatTimer{Active: true, RemainingMinutes: 5, RemainingSeconds: 30, TotalStartTime: 10}, "delayed heat timer 4m30s remaining of 10 min"},
		{protocol.Boil{BoilTemperature: 100}, "boil temperature 100.0°"},
		{protocol.VoltageAndUnits{Voltage: protocol.V110, Units: protocol.Celsius}, "supply 110V units celsius"},
		{protocol.FirmwareVersion{Version: "1.2.3"}, "firmware 1.2.3"},
		{protocol.Interaction{InteractionCode: 5}, "interaction code 5"},
		{protocol.Other{Code: 'Q', Payload: "1,2"}, `unrecognized payload "1,2"`},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%c", tt.n.Tag()), func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.n))
		})
	}
}

func TestFormatterText(t *testing.T) {
	var out bytes.Buffer
	f := newFormatter(&out, false)

	require.NoError(t, f.write(&out, event{n: protocol.Temp{Desired: 65, Current: 64.3}}))
	_, err := protocol.Decode(testutils.Record("I300"))
	require.Error(t, err)
	require.NoError(t, f.write(&out, event{err: err}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "X temperature 64.3° (target 65.0°)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "! malformed_field"), lines[1])
}

func TestFormatterJSON(t *testing.T) {
	var out bytes.Buffer
	f := newFormatter(&out, true)

	require.NoError(t, f.write(&out, event{n: protocol.VoltageAndUnits{Voltage: protocol.V230, Units: protocol.Fahrenheit}}))
	testutils.NewJSONAsserter(t).Assert(out.String(),
		`{"tag":"V","kind":"voltage_and_units","data":{"voltage":"230V","units":"fahrenheit"}}`)

	out.Reset()
	require.NoError(t, f.write(&out, event{err: errors.New("boom")}))
	testutils.NewJSONAsserter(t, testutils.WithIgnoreExtraKeys(false)).Assert(out.String(),
		`{"kind":"error","error":"boom"}`)
}

func TestFormatUserError(t *testing.T) {
	decodeErr := &protocol.DecodeError{Kind: protocol.MalformedField, Field: "current", Record: []byte("X65.0")}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"transport connection state",
			&session.TransportError{Op: session.OpWrite, Err: transport.ErrNotConnected},
			"write failed: device is not connected",
		},
		{
			"transport other",
			&session.TransportError{Op: session.OpConnect, Err: errors.New("timeout")},
			"connect failed: timeout",
		},
		{
			"missing characteristic",
			&session.CharacteristicNotFoundError{Which: "write", UUID: protocol.WriteCharacteristicID.String()},
			"device does not look like a Grainfather: write characteristic " + protocol.WriteCharacteristicID.String() + " not found",
		},
		{
			"recipe step",
			&session.RecipeError{Step: 1, Err: &session.TransportError{Op: session.OpWrite, Err: errors.New("gone")}},
			"recipe upload stopped at step 2: write failed: gone",
		},
		{
			"decode",
			fmt.Errorf("wrapped: %w", decodeErr),
			"cannot decode notification: " + decodeErr.Error(),
		},
		{
			"argument",
			&argError{command: "temp", msg: "expected one temperature"},
			"temp: expected one temperature",
		},
		{
			"plain",
			errors.New("something else"),
			"something else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserError(tt.err))
		})
	}
}
