package encoding

import (
	"bufio"
	"errors"
	"io"

	"github.com/ChenRenault/tracy/event"
)

// Decoder reads queue records from an input stream.
type Decoder struct {
	err     error
	buf     *offsetReader
	opts    options
	stats   Stats
	scratch [event.ItemSize]byte
}

// NewDecoder returns a new decoder that reads from r. If the given r is a
// bufio.Reader then the decoder will use it for buffering, otherwise creating
// a new bufio.Reader.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	o := newOptions(opts)
	buf, ok := r.(*bufio.Reader)
	if !ok {
		buf = bufio.NewReaderSize(r, o.bufSize)
	}
	d := &Decoder{buf: &offsetReader{Reader: buf}, opts: o}
	if r == nil {
		d.err = errNilReader
	}
	return d
}

var errNilReader = errors.New(`nil io.Reader given to Decoder`)

// Reset the Decoder to read from r, if r is a bufio.Reader it will use it for
// buffering, otherwise resetting the existing bufio.Reader which may have been
// obtained from the caller of NewDecoder.
func (d *Decoder) Reset(r io.Reader) {
	buf, ok := r.(*bufio.Reader)
	if ok {
		d.buf.Reader = buf
	} else {
		d.buf.Reset(r)
	}
	d.err, d.buf.off, d.stats = nil, 0, Stats{}
	if r == nil {
		d.err = errNilReader
	}
}

// Err returns the first error that occurred during decoding, if that error was
// io.EOF then Err() returns nil and the decoding was successful.
func (d *Decoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Offset returns the number of stream bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.buf.Off()
}

// Stats returns a summary of the records decoded so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Terminated reports if the stream ended with an event.EvTerminate record.
func (d *Decoder) Terminated() bool {
	return d.stats.Terminated
}

// More returns true when records may still be retrieved, false otherwise. The
// first time More returns false, all future calls will return false until Reset
// is called.
func (d *Decoder) More() bool {
	if d.err != nil {
		return false
	}
	if d.buf.Buffered() == 0 {
		if _, err := d.buf.Peek(1); err != nil {
			d.halt(err)
		}
	}
	return d.err == nil
}

// Decode reads the next record from the input stream into rec. Any error
// returned indicates permanent failure and all future calls will return the
// same error until Reset. An io.EOF error means the stream ended at a record
// boundary, either at the end of input or after a terminate record.
func (d *Decoder) Decode(rec *event.Record) error {
	if rec == nil {
		return errors.New(`nil *event.Record given to Decode`)
	}
	if d.err != nil {
		// Once an error occurs the decoder may no longer be used.
		return d.err
	}

	off := d.buf.Off()
	b, err := d.buf.ReadByte()
	if err != nil {
		return d.halt(err)
	}

	typ, err := event.Header(b).Type()
	if err != nil {
		return d.halt(offsetError(err, off))
	}

	size := d.opts.stride(typ)
	d.scratch[0] = b
	if n, err := io.ReadFull(d.buf, d.scratch[event.HeaderSize:size]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = &event.TruncatedError{Type: typ, Want: size, Got: event.HeaderSize + n}
		}
		return d.halt(offsetError(err, off))
	}

	r, _, err := event.DecodeRecord(d.scratch[:size])
	if err != nil {
		return d.halt(offsetError(err, off))
	}
	*rec = r

	d.stats.visit(rec, size)
	if d.opts.observer != nil {
		d.opts.observer.Observe(rec, size)
	}
	if typ == event.EvTerminate {
		d.err = io.EOF
	}
	return nil
}

// halt records err as the permanent error of this Decoder.
func (d *Decoder) halt(err error) error {
	if d.err != nil {
		return d.err
	}
	d.err = err
	if err != io.EOF && d.opts.observer != nil {
		d.opts.observer.ObserveError(err)
	}
	return err
}

type offsetReader struct {
	*bufio.Reader
	off int
}

func (r *offsetReader) Off() int {
	return r.off
}

func (r *offsetReader) Read(p []byte) (n int, err error) {
	n, err = r.Reader.Read(p)
	r.off += n
	return
}

func (r *offsetReader) ReadByte() (b byte, err error) {
	if b, err = r.Reader.ReadByte(); err == nil {
		r.off++
	}
	return
}
