// Package reassembly cuts a BLE notification byte stream into fixed-size
// notification records, independent of how the stream was chunked.
package reassembly

import (
	"errors"
	"fmt"

	"github.com/smallnest/ringbuffer"

	"github.com/srg/brewlink/internal/protocol"
)

// Capacity is the ring size in records
const Capacity = 8

// Buffer holds the partial tail between pushes.
// It is owned by one session and is not safe for concurrent use.
type Buffer struct {
	ring *ringbuffer.RingBuffer
}

// New creates an empty buffer
func New() *Buffer {
	return &Buffer{ring: ringbuffer.New(Capacity * protocol.NotificationFrameSize)}
}

// Push appends chunk to the retained tail and returns every complete record,
// in arrival order. Fewer than NotificationFrameSize bytes remain afterwards.
// Chunks of any length are accepted.
func (b *Buffer) Push(chunk []byte) []protocol.RawRecord {
	var records []protocol.RawRecord

	for len(chunk) > 0 {
		n, err := b.ring.Write(chunk)
		if err != nil && !errors.Is(err, ringbuffer.ErrTooMuchDataToWrite) && !errors.Is(err, ringbuffer.ErrIsFull) {
			panic(fmt.Sprintf("reassembly: ring write failed: %v", err))
		}
		chunk = chunk[n:]
		records = b.drain(records)
	}

	return records
}

func (b *Buffer) drain(records []protocol.RawRecord) []protocol.RawRecord {
	for b.ring.Length() >= protocol.NotificationFrameSize {
		var r protocol.RawRecord
		if _, err := b.ring.Read(r[:]); err != nil {
			panic(fmt.Sprintf("reassembly: ring read failed: %v", err))
		}
		records = append(records, r)
	}
	return records
}

// Len returns the number of retained tail bytes
func (b *Buffer) Len() int {
	return b.ring.Length()
}

// Reset discards the retained tail
func (b *Buffer) Reset() {
	b.ring.Reset()
}
