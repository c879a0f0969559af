package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/transport"
)

// MockTransport is a testify mock of transport.Transport.
// OnNotification is recorded rather than mocked so tests can Emit chunks.
type MockTransport struct {
	mock.Mock

	mu      sync.Mutex
	handler func([]byte)
}

var _ transport.Transport = (*MockTransport)(nil)

func (m *MockTransport) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTransport) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockTransport) DiscoverCharacteristics(ctx context.Context) ([]transport.Characteristic, error) {
	args := m.Called(ctx)
	chars, _ := args.Get(0).([]transport.Characteristic)
	return chars, args.Error(1)
}

func (m *MockTransport) Write(ch transport.Characteristic, data []byte) error {
	return m.Called(ch, data).Error(0)
}

func (m *MockTransport) Subscribe(ch transport.Characteristic) error {
	return m.Called(ch).Error(0)
}

func (m *MockTransport) OnNotification(handler func([]byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// HasHandler reports whether a notification handler is installed
func (m *MockTransport) HasHandler() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

// Emit delivers chunks to the installed handler as the BLE stack would
func (m *MockTransport) Emit(chunks ...[]byte) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()

	for _, c := range chunks {
		if h != nil {
			h(c)
		}
	}
}

// ApplianceCharacteristics is what discovery returns for a real appliance
func ApplianceCharacteristics() []transport.Characteristic {
	return []transport.Characteristic{
		{UUID: protocol.ReadCharacteristicID, Properties: transport.PropRead | transport.PropNotify},
		{UUID: protocol.WriteCharacteristicID, Properties: transport.PropWrite | transport.PropWriteWithoutResponse},
	}
}

// Record pads s with spaces to a full notification record
func Record(s string) []byte {
	b := []byte(s)
	for len(b) < protocol.NotificationFrameSize {
		b = append(b, ' ')
	}
	return b
}

// Frame pads s with spaces to a full command frame
func Frame(s string) []byte {
	b := []byte(s)
	for len(b) < protocol.CommandFrameSize {
		b = append(b, ' ')
	}
	return b
}
