package replay

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/transport"
)

// Transport serves a recorded capture as if it were the appliance.
// Writes are kept for inspection; notifications flow when Play is called.
type Transport struct {
	chunks   []Chunk
	realtime bool
	logger   *logrus.Logger

	mu          sync.Mutex
	isConnected bool
	subscribed  bool
	onData      func([]byte)
	written     [][]byte
}

var _ transport.Transport = (*Transport)(nil)

// Option configures a replay transport
type Option func(*Transport)

// WithRealtime paces Play by the recorded offsets
func WithRealtime() Option {
	return func(t *Transport) { t.realtime = true }
}

// WithLogger sets the logger; nil keeps the default
func WithLogger(l *logrus.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a replay transport over chunks
func New(chunks []Chunk, opts ...Option) *Transport {
	t := &Transport{chunks: chunks, logger: logrus.New()}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Transport) Connect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isConnected {
		return transport.ErrAlreadyConnected
	}
	t.isConnected = true
	return nil
}

func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isConnected
}

// DiscoverCharacteristics reports the appliance's read and write characteristics
func (t *Transport) DiscoverCharacteristics(context.Context) ([]transport.Characteristic, error) {
	if !t.IsConnected() {
		return nil, transport.ErrNotConnected
	}
	return []transport.Characteristic{
		{UUID: protocol.ReadCharacteristicID, Properties: transport.PropRead | transport.PropNotify},
		{UUID: protocol.WriteCharacteristicID, Properties: transport.PropWrite | transport.PropWriteWithoutResponse},
	}, nil
}

func (t *Transport) Write(_ transport.Characteristic, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isConnected {
		return transport.ErrNotConnected
	}
	t.written = append(t.written, append([]byte(nil), data...))
	return nil
}

func (t *Transport) Subscribe(transport.Characteristic) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isConnected {
		return transport.ErrNotConnected
	}
	t.subscribed = true
	return nil
}

func (t *Transport) OnNotification(handler func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onData = handler
}

func (t *Transport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isConnected {
		return transport.ErrNotConnected
	}
	t.isConnected = false
	t.subscribed = false
	return nil
}

// Written returns a copy of every payload passed to Write
func (t *Transport) Written() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.written))
	copy(out, t.written)
	return out
}

// Play delivers the capture to the notification handler, serially and in order.
// It requires a subscription and stops early when ctx is done.
func (t *Transport) Play(ctx context.Context) error {
	t.mu.Lock()
	subscribed, handler := t.subscribed, t.onData
	t.mu.Unlock()

	if !subscribed {
		return transport.ErrNotConnected
	}

	start := time.Now()
	for i, c := range t.chunks {
		if t.realtime {
			wait := time.Until(start.Add(time.Duration(c.At) * time.Microsecond))
			if wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		t.logger.WithFields(logrus.Fields{"chunk": i, "bytes": len(c.Data)}).Debug("Replaying chunk")
		if handler != nil {
			handler(c.Data)
		}
	}

	t.logger.WithField("chunks", len(t.chunks)).Info("Replay finished")
	return nil
}
