// Package session owns one appliance connection: it resolves the appliance
// characteristics, writes encoded commands and turns the notification stream
// into decoded events.
package session

import (
	"context"
	"sync"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/brewlink/internal/protocol"
	"github.com/srg/brewlink/internal/reassembly"
	"github.com/srg/brewlink/internal/recipe"
	"github.com/srg/brewlink/internal/transport"
)

// State is the session lifecycle position
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Subscribed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Subscribed:
		return "subscribed"
	default:
		return "unknown"
	}
}

// NotificationHandler receives one call per record, in arrival order.
// Exactly one of n and err is non-nil; err is a *protocol.DecodeError.
type NotificationHandler func(n protocol.Notification, err error)

// Session drives one appliance over a transport
type Session struct {
	tr     transport.Transport
	logger *logrus.Logger

	mu    sync.Mutex
	state State
	read  transport.Characteristic
	write transport.Characteristic

	// buf is touched only from the transport's serialized notification callback
	buf    *reassembly.Buffer
	latest *hashmap.Map[rune, protocol.Notification]
}

// New creates a disconnected session over tr
func New(tr transport.Transport, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		tr:     tr,
		logger: logger,
		buf:    reassembly.New(),
		latest: hashmap.New[rune, protocol.Notification](),
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether the transport link is still up
func (s *Session) IsConnected() bool {
	return s.tr.IsConnected()
}

// Open connects if needed and resolves the read and write characteristics.
// Opening an open session is a no-op. On failure the session is Disconnected.
func (s *Session) Open(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state >= Connected {
		return nil
	}

	s.state = Connecting
	defer func() {
		if err != nil {
			s.state = Disconnected
		}
	}()

	if !s.tr.IsConnected() {
		s.logger.Info("Connecting to appliance...")
		if err := s.tr.Connect(ctx); err != nil {
			return &TransportError{Op: OpConnect, Err: err}
		}
	}

	chars, err := s.tr.DiscoverCharacteristics(ctx)
	if err != nil {
		return &TransportError{Op: OpDiscover, Err: err}
	}

	read, ok := transport.Find(chars, protocol.ReadCharacteristicID)
	if !ok {
		return &CharacteristicNotFoundError{Which: "read", UUID: protocol.ReadCharacteristicID.String()}
	}
	write, ok := transport.Find(chars, protocol.WriteCharacteristicID)
	if !ok {
		return &CharacteristicNotFoundError{Which: "write", UUID: protocol.WriteCharacteristicID.String()}
	}

	s.read, s.write = read, write
	s.buf.Reset()
	s.state = Connected

	s.logger.WithFields(logrus.Fields{
		"read":  read.UUID.String(),
		"write": write.UUID.String(),
	}).Info("Appliance session open")
	return nil
}

// Command encodes cmd and writes it to the appliance. It does not retry.
func (s *Session) Command(cmd protocol.Command) error {
	s.mu.Lock()
	state, write := s.state, s.write
	s.mu.Unlock()

	if state < Connected {
		return ErrNotOpen
	}

	frame := protocol.Encode(cmd)
	if err := s.tr.Write(write, frame.Bytes()); err != nil {
		return &TransportError{Op: OpWrite, Err: err}
	}

	s.logger.WithField("frame", frame.Content()).Debug("Sent command")
	return nil
}

// SendRecipe validates r and writes its commands in order, stopping at the
// first failure.
func (s *Session) SendRecipe(r *recipe.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}

	cmds := recipe.Translate(r)
	for i, cmd := range cmds {
		if err := s.Command(cmd); err != nil {
			return &RecipeError{Step: i, Err: err}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"recipe": r.Name,
		"steps":  len(cmds),
	}).Info("Recipe sent")
	return nil
}

// Subscribe routes decoded notifications to handler and enables notifications
// on the read characteristic. On failure the session stays Connected.
func (s *Session) Subscribe(handler NotificationHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == Subscribed:
		return ErrAlreadySubscribed
	case s.state < Connected:
		return ErrNotOpen
	}

	s.tr.OnNotification(func(chunk []byte) {
		s.feed(chunk, handler)
	})

	if err := s.tr.Subscribe(s.read); err != nil {
		s.tr.OnNotification(nil)
		return &TransportError{Op: OpSubscribe, Err: err}
	}

	s.state = Subscribed
	s.logger.WithField("uuid", s.read.UUID.String()).Info("Subscribed to appliance notifications")
	return nil
}

func (s *Session) feed(chunk []byte, handler NotificationHandler) {
	s.logger.WithField("bytes", len(chunk)).Debug("Notification chunk")

	for _, rec := range s.buf.Push(chunk) {
		n, err := protocol.Decode(rec.Bytes())
		if err != nil {
			s.logger.WithError(err).Warn("Undecodable notification record")
			handler(nil, err)
			continue
		}

		s.latest.Set(n.Tag(), n)
		handler(n, nil)
	}
}

// Latest returns the most recent notification with the given tag
func (s *Session) Latest(tag rune) (protocol.Notification, bool) {
	return s.latest.Get(tag)
}

// Snapshot copies the most recent notification of every tag seen.
// It may be called while notifications arrive.
func (s *Session) Snapshot() map[rune]protocol.Notification {
	out := make(map[rune]protocol.Notification, s.latest.Len())
	s.latest.Range(func(tag rune, n protocol.Notification) bool {
		out[tag] = n
		return true
	})
	return out
}

// Close detaches the notification handler and disconnects the transport when
// it owns the link.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Disconnected
	s.tr.OnNotification(nil)

	if c, ok := s.tr.(transport.Closer); ok && s.tr.IsConnected() {
		return c.Disconnect()
	}
	return nil
}
