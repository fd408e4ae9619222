package event

import (
	"fmt"
	"io"
)

// Record is a single queue record, a Type and the Payload it selects. The
// Payload of an EvTerminate record is nil.
type Record struct {

	// Type is the type of this Record.
	Type Type

	// Payload is one of the payload structs in this package, matching Type.
	Payload Payload
}

// Slot is a fixed stride record, the wire form occupies the prefix and the
// remaining bytes are zero.
type Slot [ItemSize]byte

// Validate returns an error if Type is unknown or Payload does not have the
// shape required by Type.
func (r Record) Validate() error {
	if !r.Type.Valid() {
		return &UnknownTypeError{Type: byte(r.Type)}
	}

	want := schemas[r.Type].shape
	if want == shapeNone {
		if r.Payload != nil {
			return fmt.Errorf(`%w: %v carries no payload, got %T`, ErrPayload, r.Type, r.Payload)
		}
		return nil
	}

	// Only the value types are payloads, pointers to them are rejected.
	var kindErr error
	switch p := r.Payload.(type) {
	case LockAnnounce:
		if !p.Kind.Valid() {
			kindErr = &InvalidLockKindError{Kind: byte(p.Kind)}
		}
	case PlotData:
		if !p.Kind.Valid() {
			kindErr = &InvalidPlotKindError{Kind: byte(p.Kind)}
		}
	case ZoneBegin, ZoneEnd, StringTransfer, FrameMark, SourceLocation, ZoneText,
		LockWait, LockObtain, LockRelease, LockMark, Message,
		GpuNewContext, GpuZoneBegin, GpuZoneEnd, GpuTime, GpuResync:
	default:
		return fmt.Errorf(`%w: %v given %T`, ErrPayload, r.Type, r.Payload)
	}
	if r.Payload.shape() != want {
		return fmt.Errorf(`%w: %v given %T`, ErrPayload, r.Type, r.Payload)
	}
	return kindErr
}

// Size returns the wire size of this record.
func (r Record) Size() int {
	return r.Type.Size()
}

// String implements fmt.Stringer by returning a helpful string describing
// this record.
func (r Record) String() string {
	if r.Payload == nil {
		return r.Type.String()
	}
	if s, ok := r.Payload.(fmt.Stringer); ok {
		return r.Type.String() + fmt.Sprint(s)
	}
	return fmt.Sprintf(`%v%+v`, r.Type, r.Payload)
}

// MarshalSlot returns the fixed stride form of this record.
func (r Record) MarshalSlot() (s Slot, err error) {
	_, err = AppendRecord(s[:0], r)
	return
}

// UnmarshalSlot decodes the record held in s.
func UnmarshalSlot(s Slot) (Record, error) {
	r, _, err := DecodeRecord(s[:])
	return r, err
}

// AppendRecord appends the wire form of r to dst, returning the extended
// buffer. The record is validated first and dst is returned unchanged on
// error.
func AppendRecord(dst []byte, r Record) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return dst, err
	}

	n := len(dst)
	size := r.Type.Size()
	if cap(dst)-n < size {
		grown := make([]byte, n, n+size)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:n+size]
	dst[n] = byte(r.Type)
	if r.Payload != nil {
		r.Payload.put(dst[n+HeaderSize:])
	}
	return dst, nil
}

// DecodeRecord decodes a single record from the front of b, returning it with
// the number of bytes consumed. It returns io.EOF when b is empty, otherwise
// any error is one of the typed errors of this package.
func DecodeRecord(b []byte) (Record, int, error) {
	if len(b) == 0 {
		return Record{}, 0, io.EOF
	}

	typ, err := Header(b[0]).Type()
	if err != nil {
		return Record{}, 0, err
	}

	size := SizeTable[typ]
	if len(b) < size {
		return Record{}, 0, &TruncatedError{Type: typ, Want: size, Got: len(b)}
	}

	rec := Record{Type: typ}
	if s := schemas[typ].shape; s != shapeNone {
		if rec.Payload, err = getPayload(s, b[HeaderSize:size]); err != nil {
			return Record{}, 0, err
		}
	}
	return rec, size, nil
}
