package replay

import (
	"bytes"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/brewlink/internal/transport"
)

// Recorder wraps a transport and captures every notification chunk it delivers
type Recorder struct {
	transport.Transport

	w      *Writer
	logger *logrus.Logger
	start  time.Time
	now    func() time.Time
}

// NewRecorder captures inner's notifications to w. The clock starts now.
func NewRecorder(inner transport.Transport, w *Writer, logger *logrus.Logger) *Recorder {
	if logger == nil {
		logger = logrus.New()
	}
	r := &Recorder{Transport: inner, w: w, logger: logger, now: time.Now}
	r.start = r.now()
	return r
}

// OnNotification installs handler behind the capture tap
func (r *Recorder) OnNotification(handler func([]byte)) {
	r.Transport.OnNotification(func(data []byte) {
		c := Chunk{At: r.now().Sub(r.start).Microseconds(), Data: bytes.Clone(data)}
		if err := r.w.Write(c); err != nil {
			r.logger.WithError(err).Warn("Failed to write capture chunk")
		}
		if handler != nil {
			handler(data)
		}
	})
}

// Disconnect forwards to the wrapped transport when it owns a connection
func (r *Recorder) Disconnect() error {
	if c, ok := r.Transport.(transport.Closer); ok {
		return c.Disconnect()
	}
	return nil
}
