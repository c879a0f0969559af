package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"

	"github.com/srg/brewlink/internal/protocol"
)

// connectionPollInterval is how often the printer checks for link loss
const connectionPollInterval = 250 * time.Millisecond

// sink decouples the BLE callback from terminal output. When the printer
// falls behind, the oldest events are overwritten.
type sink struct {
	buffer      mpmc.RichOverlappedRingBuffer[event]
	wake        chan struct{}
	overwritten atomic.Int64
}

func newSink(size uint32) *sink {
	return &sink{
		buffer: mpmc.NewOverlappedRingBuffer[event](size),
		wake:   make(chan struct{}, 1),
	}
}

// push is a session.NotificationHandler
func (s *sink) push(n protocol.Notification, err error) {
	overwrites, qerr := s.buffer.EnqueueM(event{n: n, err: err})
	if qerr != nil {
		return
	}
	if overwrites > 0 {
		s.overwritten.Add(int64(overwrites))
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// drain hands every queued event to fn, oldest first
func (s *sink) drain(fn func(event) error) error {
	for !s.buffer.IsEmpty() {
		ev, err := s.buffer.Dequeue()
		if err != nil {
			return nil
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

// run drains into fn until ctx is done or connected reports false. Events
// already queued are flushed before returning.
func (s *sink) run(ctx context.Context, connected func() bool, fn func(event) error) error {
	ticker := time.NewTicker(connectionPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.drain(fn); err != nil {
				return err
			}
			return ctx.Err()
		case <-s.wake:
			if err := s.drain(fn); err != nil {
				return err
			}
		case <-ticker.C:
			if !connected() {
				if err := s.drain(fn); err != nil {
					return err
				}
				return ErrConnectionLost
			}
		}
	}
}

// Overwritten reports how many events were lost to a full buffer
func (s *sink) Overwritten() int64 {
	return s.overwritten.Load()
}
