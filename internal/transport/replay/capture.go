// Package replay records BLE notification chunks to a CBOR capture file and
// plays them back through a transport.Transport, so sessions can be exercised
// without an appliance.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Chunk is one notification as delivered by the BLE stack
type Chunk struct {
	// At is the offset from the start of the capture in microseconds
	At   int64  `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR decoder mode: %v", err))
	}
}

// Writer appends chunks to a capture stream.
// It is safe for concurrent use.
type Writer struct {
	closer  io.Closer
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewWriter writes chunks to w
func NewWriter(w io.Writer) *Writer {
	wr := &Writer{encoder: encMode.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		wr.closer = c
	}
	return wr
}

// Create truncates or creates the capture file at path
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewWriter(f), nil
}

// Write appends one chunk. Writes after Close are ignored.
func (w *Writer) Write(c Chunk) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.encoder.Encode(c)
}

// Close closes the underlying file, if any. It is safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Reader streams chunks from a capture
type Reader struct {
	closer  io.Closer
	decoder *cbor.Decoder
}

// NewReader reads chunks from r
func NewReader(r io.Reader) *Reader {
	rd := &Reader{decoder: decMode.NewDecoder(r)}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// Open opens the capture file at path
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f), nil
}

// Next returns the next chunk, or io.EOF at the end of the capture
func (r *Reader) Next() (Chunk, error) {
	var c Chunk
	if err := r.decoder.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return Chunk{}, io.EOF
		}
		return Chunk{}, fmt.Errorf("decode capture chunk: %w", err)
	}
	return c, nil
}

// ReadAll returns every remaining chunk
func (r *Reader) ReadAll() ([]Chunk, error) {
	var out []Chunk
	for {
		c, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
}

// Close closes the underlying file, if any
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Load reads a whole capture file
func Load(path string) ([]Chunk, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadAll()
}
