// Package tracy reads and writes streams of fixed size profiler queue
// records. The record types and their payloads live in package event, the
// streaming Decoder and Encoder in package encoding. This package holds
// helpers for whole streams held in memory.
package tracy

import (
	"io"

	"github.com/ChenRenault/tracy/encoding"
	"github.com/ChenRenault/tracy/event"
)

// Decode reads the records of the stream in r up to and including its
// terminate record, or until r is exhausted at a record boundary.
func Decode(r io.Reader, opts ...encoding.Option) ([]event.Record, error) {
	var (
		out []event.Record
		dec = encoding.NewDecoder(r, opts...)
	)
	for dec.More() {
		var rec event.Record
		if err := dec.Decode(&rec); err != nil {
			break
		}
		out = append(out, rec)
	}
	return out, dec.Err()
}

// Encode writes recs to w followed by a terminate record, unless recs already
// ends with one. It returns the number of bytes written.
func Encode(w io.Writer, recs []event.Record, opts ...encoding.Option) (int, error) {
	enc := encoding.NewEncoder(w, opts...)
	for _, rec := range recs {
		if err := enc.Emit(rec); err != nil {
			return enc.Offset(), err
		}
	}
	if n := len(recs); n == 0 || recs[n-1].Type != event.EvTerminate {
		if err := enc.Emit(event.Record{Type: event.EvTerminate}); err != nil {
			return enc.Offset(), err
		}
	}
	return enc.Offset(), nil
}
