//go:build !darwin

package goble

import (
	"fmt"
	"runtime"

	"github.com/go-ble/ble"

	"github.com/srg/brewlink/internal/transport"
)

// The go-ble fork in use only ships the CoreBluetooth backend; the tinygo
// adapter covers BlueZ.
func newDevice() (ble.Device, error) {
	return nil, fmt.Errorf("%w: go-ble adapter on %s, use --adapter tinygo", transport.ErrUnsupported, runtime.GOOS)
}
