// Package goble implements transport.Transport on top of github.com/go-ble/ble.
package goble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srg/brewlink/internal/groutine"
	"github.com/srg/brewlink/internal/transport"
)

// maxChunkSize is the ATT payload that fits the default MTU
const maxChunkSize = 20

// DeviceFactory creates the platform BLE device (can be overridden in tests)
var DeviceFactory = newDevice

// Transport is a go-ble central connection to one peripheral
type Transport struct {
	address string
	logger  *logrus.Logger

	client      ble.Client
	chars       map[uuid.UUID]*ble.Characteristic
	onData      func([]byte)
	isConnected bool

	writeMutex sync.Mutex
	connMutex  sync.RWMutex
}

var _ transport.Transport = (*Transport)(nil)

// New creates a transport for the peripheral at address
func New(address string, logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	return &Transport{
		address: address,
		logger:  logger,
		chars:   make(map[uuid.UUID]*ble.Characteristic),
	}
}

// Connect dials the peripheral. The deadline comes from ctx.
func (t *Transport) Connect(ctx context.Context) error {
	t.connMutex.Lock()
	defer t.connMutex.Unlock()

	if t.isConnected {
		return transport.ErrAlreadyConnected
	}

	d, err := DeviceFactory()
	if err != nil {
		return fmt.Errorf("failed to create BLE device: %w", transport.NormalizeError(err))
	}
	ble.SetDefaultDevice(d)

	t.logger.WithField("address", t.address).Info("Connecting to BLE device...")

	client, err := ble.Dial(ctx, ble.NewAddr(t.address))
	if err != nil {
		return fmt.Errorf("failed to connect to device: %w", transport.NormalizeError(err))
	}

	t.client = client
	t.isConnected = true

	// CoreBluetooth clients report link loss on a channel
	if dc, ok := client.(interface{ Disconnected() <-chan struct{} }); ok {
		groutine.Go(context.Background(), "goble-disconnect-monitor", func(context.Context) {
			<-dc.Disconnected()
			t.connMutex.Lock()
			if t.client == client {
				t.isConnected = false
			}
			t.connMutex.Unlock()
			t.logger.WithField("address", t.address).Warn("BLE device disconnected")
		})
	}

	t.logger.WithField("address", t.address).Info("Connected to device")
	return nil
}

// IsConnected returns whether the link is up
func (t *Transport) IsConnected() bool {
	t.connMutex.RLock()
	defer t.connMutex.RUnlock()
	return t.isConnected
}

// DiscoverCharacteristics walks the full GATT profile
func (t *Transport) DiscoverCharacteristics(ctx context.Context) ([]transport.Characteristic, error) {
	t.connMutex.Lock()
	defer t.connMutex.Unlock()

	if !t.isConnected {
		return nil, transport.ErrNotConnected
	}

	type result struct {
		profile *ble.Profile
		err     error
	}
	done := make(chan result, 1)
	client := t.client
	go func() {
		p, err := client.DiscoverProfile(true)
		done <- result{p, err}
	}()

	var profile *ble.Profile
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("failed to discover profile: %w", transport.NormalizeError(r.err))
		}
		profile = r.profile
	}

	var out []transport.Characteristic
	for _, svc := range profile.Services {
		for _, c := range svc.Characteristics {
			id, err := toUUID(c.UUID)
			if err != nil {
				t.logger.WithError(err).WithField("uuid", c.UUID.String()).Debug("Skipping characteristic with unparsable UUID")
				continue
			}
			t.chars[id] = c
			out = append(out, transport.Characteristic{
				UUID:       id,
				Properties: transport.Properties(c.Property),
			})
		}
	}

	t.logger.WithFields(logrus.Fields{
		"services":        len(profile.Services),
		"characteristics": len(out),
	}).Info("Discovered GATT profile")

	return out, nil
}

// Write sends data without response, split into ATT-sized chunks
func (t *Transport) Write(ch transport.Characteristic, data []byte) error {
	t.connMutex.RLock()
	connected, client, c := t.isConnected, t.client, t.chars[ch.UUID]
	t.connMutex.RUnlock()

	if !connected {
		return transport.ErrNotConnected
	}
	if c == nil {
		return fmt.Errorf("characteristic %s not discovered", ch.UUID)
	}

	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		chunk := data[:n]
		data = data[n:]

		if err := client.WriteCharacteristic(c, chunk, true); err != nil {
			return fmt.Errorf("failed to write to characteristic %s: %w", ch.UUID, transport.NormalizeError(err))
		}

		t.logger.WithFields(logrus.Fields{
			"uuid":  ch.UUID.String(),
			"bytes": len(chunk),
		}).Debug("Wrote chunk to characteristic")

		if len(data) > 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}

	return nil
}

// Subscribe enables notifications on ch and routes them to the handler
func (t *Transport) Subscribe(ch transport.Characteristic) error {
	t.connMutex.RLock()
	connected, client, c := t.isConnected, t.client, t.chars[ch.UUID]
	t.connMutex.RUnlock()

	if !connected {
		return transport.ErrNotConnected
	}
	if c == nil {
		return fmt.Errorf("characteristic %s not discovered", ch.UUID)
	}

	if err := client.Subscribe(c, false, t.handleNotification); err != nil {
		return fmt.Errorf("failed to subscribe to characteristic %s: %w", ch.UUID, transport.NormalizeError(err))
	}

	t.logger.WithField("uuid", ch.UUID.String()).Info("Subscribed to characteristic")
	return nil
}

// OnNotification sets the callback for incoming notification chunks
func (t *Transport) OnNotification(handler func([]byte)) {
	t.connMutex.Lock()
	defer t.connMutex.Unlock()
	t.onData = handler
}

func (t *Transport) handleNotification(data []byte) {
	t.logger.WithField("bytes", len(data)).Debug("Received data from device")

	t.connMutex.RLock()
	handler := t.onData
	t.connMutex.RUnlock()

	if handler != nil {
		handler(data)
	}
}

// Disconnect closes the BLE link
func (t *Transport) Disconnect() error {
	t.connMutex.Lock()
	defer t.connMutex.Unlock()

	if !t.isConnected {
		return transport.ErrNotConnected
	}

	if t.client != nil {
		if err := t.client.CancelConnection(); err != nil {
			t.logger.WithError(err).Warn("Error disconnecting from device")
		}
	}

	t.isConnected = false
	t.client = nil
	t.chars = make(map[uuid.UUID]*ble.Characteristic)

	t.logger.Info("Disconnected from BLE device")
	return nil
}

// toUUID expands 16- and 32-bit SIG UUIDs onto the Bluetooth base UUID
func toUUID(u ble.UUID) (uuid.UUID, error) {
	s := u.String()
	switch len(s) {
	case 4:
		s = "0000" + s + "-0000-1000-8000-00805f9b34fb"
	case 8:
		s += "-0000-1000-8000-00805f9b34fb"
	}
	return uuid.Parse(s)
}
