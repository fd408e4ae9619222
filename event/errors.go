package event

import (
	"errors"
	"fmt"
)

// Every decoding error is fatal for the stream it occurred in, the format has
// no framing to resynchronize from.
var (

	// ErrUnknownType occurs when a header byte is not a known record Type.
	ErrUnknownType = errors.New(`unknown record type`)

	// ErrTruncated occurs when fewer bytes remain than the size table declares
	// for a records type.
	ErrTruncated = errors.New(`truncated record`)

	// ErrInvalidPlotKind occurs when a PlotData value kind is unknown.
	ErrInvalidPlotKind = errors.New(`invalid plot value kind`)

	// ErrInvalidLockKind occurs when a LockAnnounce lock kind is unknown.
	ErrInvalidLockKind = errors.New(`invalid lock kind`)

	// ErrPayload occurs when encoding a Record whose Payload does not match
	// the shape required by its Type.
	ErrPayload = errors.New(`payload does not match record type`)
)

// UnknownTypeError is returned for a header byte outside of the closed set of
// record types.
type UnknownTypeError struct {
	Type byte
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf(`unknown record type 0x%x`, e.Type)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }

// TruncatedError is returned when a record of Type needed Want bytes but the
// input ended after Got.
type TruncatedError struct {
	Type      Type
	Want, Got int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf(`truncated %v record: need %d bytes, have %d`, e.Type, e.Want, e.Got)
}

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// InvalidPlotKindError is returned for a PlotData value kind byte outside of
// Float, Double and Int.
type InvalidPlotKindError struct {
	Kind byte
}

func (e *InvalidPlotKindError) Error() string {
	return fmt.Sprintf(`invalid plot value kind 0x%x`, e.Kind)
}

func (e *InvalidPlotKindError) Is(target error) bool { return target == ErrInvalidPlotKind }

// InvalidLockKindError is returned for a LockAnnounce kind byte outside of
// Lockable and SharedLockable.
type InvalidLockKindError struct {
	Kind byte
}

func (e *InvalidLockKindError) Error() string {
	return fmt.Sprintf(`invalid lock kind 0x%x`, e.Kind)
}

func (e *InvalidLockKindError) Is(target error) bool { return target == ErrInvalidLockKind }
