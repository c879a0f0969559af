package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/session"
	"github.com/srg/brewlink/internal/transport"
)

// Command-level errors
var (
	// ErrConnectionLost indicates the BLE link dropped while a command was
	// waiting on it. It is distinct from transport.ErrNotConnected, which means
	// the link was never up.
	ErrConnectionLost = errors.New("connection lost")

	ErrUnknownCommand = errors.New("unknown command")
)

// FormatUserError turns library errors into one line a user can act on
func FormatUserError(err error) string {
	var (
		trErr    *session.TransportError
		cnfErr   *session.CharacteristicNotFoundError
		recErr   *session.RecipeError
		decErr   *protocol.DecodeError
		connErr  *transport.ConnectionError
		argError *argError
	)

	switch {
	case errors.As(err, &argError):
		return argError.Error()
	case errors.Is(err, transport.ErrUnsupported):
		return err.Error()
	case errors.As(err, &cnfErr):
		return fmt.Sprintf("device does not look like a Grainfather: %s characteristic %s not found", cnfErr.Which, cnfErr.UUID)
	case errors.As(err, &recErr):
		return fmt.Sprintf("recipe upload stopped at step %d: %s", recErr.Step+1, FormatUserError(recErr.Err))
	case errors.As(err, &trErr):
		if errors.As(trErr.Err, &connErr) {
			return fmt.Sprintf("%s failed: device is %s", trErr.Op, strings.ReplaceAll(string(connErr.State), "_", " "))
		}
		return fmt.Sprintf("%s failed: %s", trErr.Op, trErr.Err)
	case errors.As(err, &decErr):
		return "cannot decode notification: " + decErr.Error()
	}
	return err.Error()
}

// argError is a usage mistake in a command's arguments
type argError struct {
	command string
	msg     string
}

func (e *argError) Error() string {
	return fmt.Sprintf("%s: %s", e.command, e.msg)
}
