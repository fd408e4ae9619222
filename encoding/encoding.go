// Package encoding implements a streaming Decoder and Encoder for queue record
// streams. For the record types and their payloads see the event package.
//
// Overview
//
// A stream is a sequence of records, each a single type byte followed by a
// payload whose size is given by event.SizeTable. There is no length field,
// no framing and no byte order marker, producer and consumer are expected to
// share the native integer and float representation. A stream ends at a clean
// end of input or after an event.EvTerminate record.
//
// Records may also be stored in fixed 32 byte slots, see WithSlots. Both sides
// of a stream must agree on the form used.
//
// Errors
//
// Any decoding error is permanent for the stream. A record cut short by the end
// of input yields an error matching event.ErrTruncated, an unknown type byte
// event.ErrUnknownType, and invalid enumerations within a payload
// event.ErrInvalidPlotKind or event.ErrInvalidLockKind.
package encoding

import (
	"fmt"

	"github.com/ChenRenault/tracy/event"
)

const (
	// Guards against a bad configuration from causing oom.
	maxBufferSize = 1 << 24
	minBufferSize = 16

	defaultBufferSize = 4096
)

// Observer is notified of every record a Decoder returns, along with the
// number of stream bytes it occupied, and of the error that halts a stream.
type Observer interface {
	Observe(rec *event.Record, size int)
	ObserveError(err error)
}

// Option configures a Decoder or Encoder.
type Option func(*options)

type options struct {
	slots    bool
	bufSize  int
	observer Observer
}

func newOptions(opts []Option) options {
	o := options{bufSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stride returns the number of stream bytes a record of typ occupies.
func (o *options) stride(typ event.Type) int {
	if o.slots {
		return event.ItemSize
	}
	return typ.Size()
}

// WithSlots selects the fixed stride form, every record occupies
// event.ItemSize bytes with the unused tail zeroed.
func WithSlots() Option {
	return func(o *options) {
		o.slots = true
	}
}

// WithBufferSize sets the size of the read buffer a Decoder allocates when
// not given a *bufio.Reader. It has no effect on an Encoder.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufSize = min(max(n, minBufferSize), maxBufferSize)
	}
}

// WithObserver registers obs with a Decoder.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// offsetError attaches the stream offset to err while preserving it for
// errors.Is and errors.As.
func offsetError(err error, off int) error {
	return fmt.Errorf(`%w at 0x%x`, err, off)
}
