// Package tinyble implements transport.Transport with tinygo.org/x/bluetooth,
// which drives BlueZ on Linux and CoreBluetooth on macOS.
//
// On macOS the peripheral address is a CoreBluetooth UUID, not a MAC.
package tinyble

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/srg/brewlink/internal/transport"
)

// Transport is a tinygo bluetooth central connection to one peripheral
type Transport struct {
	adapter *bluetooth.Adapter
	address string
	logger  *logrus.Logger

	mu          sync.RWMutex
	device      *bluetooth.Device
	chars       map[uuid.UUID]bluetooth.DeviceCharacteristic
	onData      func([]byte)
	isConnected bool

	writeMutex sync.Mutex
}

var _ transport.Transport = (*Transport)(nil)

// New creates a transport on the default adapter
func New(address string, logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	return &Transport{
		adapter: bluetooth.DefaultAdapter,
		address: address,
		logger:  logger,
		chars:   make(map[uuid.UUID]bluetooth.DeviceCharacteristic),
	}
}

// Connect enables the adapter and connects. The tinygo call carries its own
// timeout; ctx only lets the caller stop waiting.
func (t *Transport) Connect(ctx context.Context) error {
	if t.IsConnected() {
		return transport.ErrAlreadyConnected
	}

	if err := t.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable adapter: %w", transport.NormalizeError(err))
	}

	t.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected || device.Address.String() != t.address {
			return
		}
		t.mu.Lock()
		t.isConnected = false
		t.mu.Unlock()
		t.logger.WithField("address", t.address).Warn("BLE device disconnected")
	})

	var addr bluetooth.Address
	addr.Set(t.address)

	t.logger.WithField("address", t.address).Info("Connecting to BLE device...")

	type connectResult struct {
		device bluetooth.Device
		err    error
	}
	ch := make(chan connectResult, 1)
	go func() {
		device, err := t.adapter.Connect(addr, bluetooth.ConnectionParams{})
		ch <- connectResult{device, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("connect to %s: %w", t.address, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("failed to connect to device: %w", transport.NormalizeError(r.err))
		}
		t.mu.Lock()
		t.device = &r.device
		t.isConnected = true
		t.mu.Unlock()
	}

	t.logger.WithField("address", t.address).Info("Connected to device")
	return nil
}

// IsConnected returns whether the link is up
func (t *Transport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isConnected
}

// DiscoverCharacteristics lists every characteristic of every service
func (t *Transport) DiscoverCharacteristics(ctx context.Context) ([]transport.Characteristic, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isConnected {
		return nil, transport.ErrNotConnected
	}

	svcs, err := t.device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("discover services: %w", transport.NormalizeError(err))
	}

	var out []transport.Characteristic
	for _, svc := range svcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("discover characteristics of %s: %w", svc.UUID().String(), transport.NormalizeError(err))
		}
		for _, c := range chars {
			id, err := uuid.Parse(c.UUID().String())
			if err != nil {
				continue
			}
			t.chars[id] = c
			// tinygo does not expose the property bitmask on every platform
			out = append(out, transport.Characteristic{UUID: id})
		}
	}

	t.logger.WithFields(logrus.Fields{
		"services":        len(svcs),
		"characteristics": len(out),
	}).Info("Discovered GATT profile")

	return out, nil
}

// Write sends data without response
func (t *Transport) Write(ch transport.Characteristic, data []byte) error {
	c, err := t.lookup(ch)
	if err != nil {
		return err
	}

	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	if _, err := c.WriteWithoutResponse(data); err != nil {
		return fmt.Errorf("failed to write to characteristic %s: %w", ch.UUID, transport.NormalizeError(err))
	}

	t.logger.WithFields(logrus.Fields{
		"uuid":  ch.UUID.String(),
		"bytes": len(data),
	}).Debug("Wrote to characteristic")
	return nil
}

// Subscribe enables notifications on ch
func (t *Transport) Subscribe(ch transport.Characteristic) error {
	c, err := t.lookup(ch)
	if err != nil {
		return err
	}

	err = c.EnableNotifications(func(buf []byte) {
		// tinygo reuses buf between callbacks
		data := append([]byte(nil), buf...)

		t.mu.RLock()
		handler := t.onData
		t.mu.RUnlock()

		t.logger.WithField("bytes", len(data)).Debug("Received data from device")
		if handler != nil {
			handler(data)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to characteristic %s: %w", ch.UUID, transport.NormalizeError(err))
	}

	t.logger.WithField("uuid", ch.UUID.String()).Info("Subscribed to characteristic")
	return nil
}

// OnNotification sets the callback for incoming notification chunks
func (t *Transport) OnNotification(handler func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onData = handler
}

// Disconnect closes the BLE link
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isConnected {
		return transport.ErrNotConnected
	}

	if err := t.device.Disconnect(); err != nil {
		t.logger.WithError(err).Warn("Error disconnecting from device")
	}

	t.isConnected = false
	t.device = nil
	t.chars = make(map[uuid.UUID]bluetooth.DeviceCharacteristic)

	t.logger.Info("Disconnected from BLE device")
	return nil
}

func (t *Transport) lookup(ch transport.Characteristic) (bluetooth.DeviceCharacteristic, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.isConnected {
		return bluetooth.DeviceCharacteristic{}, transport.ErrNotConnected
	}
	c, ok := t.chars[ch.UUID]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("characteristic %s not discovered", ch.UUID)
	}
	return c, nil
}
