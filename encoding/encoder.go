package encoding

import (
	"errors"
	"io"

	"github.com/ChenRenault/tracy/event"
)

// ErrTerminated is returned by Emit once a terminate record has been written.
var ErrTerminated = errors.New(`stream already terminated`)

// Encoder writes queue records to an output stream.
//
// Each call to Emit results in a single Write of the complete record, callers
// wanting fewer writes should give a *bufio.Writer and Flush it themselves.
type Encoder struct {
	w    *offsetWriter
	err  error
	opts options
	done bool
	buf  [event.ItemSize]byte
}

// NewEncoder returns a new encoder that emits records to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: &offsetWriter{w: w}, opts: newOptions(opts)}
}

// Err returns the first error that occurred during encoding, once an error
// occurs all future calls to Err() will return the same value.
func (e *Encoder) Err() error {
	return e.err
}

// Offset returns the number of bytes written so far.
func (e *Encoder) Offset() int {
	return e.w.Off()
}

// Reset the Encoder for writing to w.
func (e *Encoder) Reset(w io.Writer) {
	e.err, e.done, e.w.off, e.w.w = nil, false, 0, w
}

// Emit writes a single record to the the output stream. If Emit returns a
// non-nil error then failure is permanent and all future calls will
// immediately return the same error. Emitting after a terminate record
// returns ErrTerminated.
func (e *Encoder) Emit(rec event.Record) error {
	if e.err != nil {
		return e.err
	}
	if e.done {
		return ErrTerminated
	}

	b, err := event.AppendRecord(e.buf[:0], rec)
	if err != nil {
		e.err = offsetError(err, e.w.Off())
		return e.err
	}
	if e.opts.slots {
		clear(e.buf[len(b):])
		b = e.buf[:]
	}

	n, err := e.w.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		e.err = offsetError(err, e.w.Off())
		return e.err
	}
	e.done = rec.Type == event.EvTerminate
	return nil
}

type offsetWriter struct {
	w   io.Writer
	off int
}

func (r *offsetWriter) Off() int {
	return r.off
}

func (r *offsetWriter) Write(p []byte) (n int, err error) {
	n, err = r.w.Write(p)
	r.off += n
	return
}
