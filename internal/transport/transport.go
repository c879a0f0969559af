// Package transport defines the BLE capability a session needs and the errors
// shared by its adapters (goble, tinyble, replay).
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Properties is the GATT characteristic property bitmask
type Properties uint8

const (
	PropBroadcast Properties = 1 << iota
	PropRead
	PropWriteWithoutResponse
	PropWrite
	PropNotify
	PropIndicate
	PropAuthenticatedSignedWrites
	PropExtendedProperties
)

var propertyNames = []struct {
	p    Properties
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteWithoutResponse, "write-without-response"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
	{PropAuthenticatedSignedWrites, "authenticated-signed-writes"},
	{PropExtendedProperties, "extended-properties"},
}

// Has reports whether all bits of q are set
func (p Properties) Has(q Properties) bool {
	return p&q == q
}

func (p Properties) String() string {
	var names []string
	for _, pn := range propertyNames {
		if p.Has(pn.p) {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Characteristic is a discovered GATT endpoint
type Characteristic struct {
	UUID       uuid.UUID
	Properties Properties
}

// Transport is the BLE capability a session drives.
// Notification callbacks are delivered serially.
type Transport interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	DiscoverCharacteristics(ctx context.Context) ([]Characteristic, error)
	Write(ch Characteristic, data []byte) error
	Subscribe(ch Characteristic) error
	OnNotification(handler func([]byte))
}

// Closer is implemented by adapters that own a connection
type Closer interface {
	Disconnect() error
}

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
)

// ErrUnsupported is returned by adapters for operations their stack lacks
var ErrUnsupported = errors.New("unsupported")

// NormalizeError maps known BLE stack error strings to ConnectionError sentinels,
// keeping the original error text.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not connected"):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	case strings.Contains(msg, "already connected"):
		return fmt.Errorf("%w: %v", ErrAlreadyConnected, err)
	default:
		return err
	}
}

// Find returns the characteristic with the given UUID
func Find(chars []Characteristic, id uuid.UUID) (Characteristic, bool) {
	for _, c := range chars {
		if c.UUID == id {
			return c, true
		}
	}
	return Characteristic{}, false
}
