package event

import (
	"fmt"
)

// These are the types of records that may appear in a queue stream. Their
// order is part of the wire format and must not change.
const (
	EvZoneText              Type = 0  // zone text annotation [thread, text ptr]
	EvMessage               Type = 1  // message [time, thread, text ptr]
	EvZoneBeginAllocSrcLoc  Type = 2  // zone begin with allocated source location [time, thread, srcloc, cpu]
	EvTerminate             Type = 3  // end of stream, header only
	EvZoneBegin             Type = 4  // zone begin [time, thread, srcloc ptr, cpu]
	EvZoneEnd               Type = 5  // zone end [time, thread, cpu]
	EvFrameMarkMsg          Type = 6  // frame mark [time]
	EvSourceLocation        Type = 7  // source location [name, function ptr, file ptr, line, r, g, b]
	EvLockAnnounce          Type = 8  // lock announce [id, lock location ptr, lock kind]
	EvLockWait              Type = 9  // lock wait [id, time, thread]
	EvLockObtain            Type = 10 // lock obtain [id, time, thread]
	EvLockRelease           Type = 11 // lock release [id, time, thread]
	EvLockMark              Type = 12 // lock mark [id, thread, srcloc ptr]
	EvPlotData              Type = 13 // plot data point [name ptr, time, value kind, value]
	EvMessageLiteral        Type = 14 // literal message [time, thread, text ptr]
	EvGpuNewContext         Type = 15 // gpu context [cpu time, gpu time, thread, context, accuracy bits]
	EvGpuZoneBegin          Type = 16 // gpu zone begin [cpu time, srcloc, context]
	EvGpuZoneEnd            Type = 17 // gpu zone end [cpu time, context]
	EvGpuTime               Type = 18 // gpu timestamp [gpu time, context]
	EvGpuResync             Type = 19 // gpu resync [cpu time, gpu time, context]
	EvStringData            Type = 20 // string transfer [ptr]
	EvThreadName            Type = 21 // string transfer [ptr]
	EvCustomStringData      Type = 22 // string transfer [ptr]
	EvPlotName              Type = 23 // string transfer [ptr]
	EvSourceLocationPayload Type = 24 // string transfer [ptr]
	EvCount                 Type = 25
)

// Type represents the type of a queue record.
type Type byte

// ParseType converts a raw header byte into a Type, returning an
// *UnknownTypeError if b is outside of the closed set of record types.
func ParseType(b byte) (Type, error) {
	if t := Type(b); t.Valid() {
		return t, nil
	}
	return EvCount, &UnknownTypeError{Type: b}
}

// Valid returns true if the record Type is valid, false otherwise.
func (t Type) Valid() bool {
	return t < EvCount
}

// Deferred reports if records of this type carry a source location or text
// pointer that the producer must resolve before the record is released.
func (t Type) Deferred() bool {
	return t < EvTerminate
}

// StringTransfer reports if records of this type carry a single string
// transfer pointer.
func (t Type) StringTransfer() bool {
	return EvStringData <= t && t < EvCount
}

// Name returns the name of this record type.
func (t Type) Name() string {
	if !t.Valid() {
		return fmt.Sprintf(`Type(0x%x)`, byte(t))
	}
	return schemas[t].name
}

// Size returns the number of bytes a record of this type occupies on the
// wire, including the header. It returns 0 for invalid types.
func (t Type) Size() int {
	if !t.Valid() {
		return 0
	}
	return SizeTable[t]
}

// PayloadSize returns the number of bytes following the header on the wire.
func (t Type) PayloadSize() int {
	if !t.Valid() {
		return 0
	}
	return SizeTable[t] - HeaderSize
}

// String implements fmt.Stringer by returning a helpful string describing
// this record type.
func (t Type) String() string {
	return `event.` + t.Name()
}

// Header is the single leading byte of every record.
type Header byte

// Type performs the validated conversion of this header into a Type.
func (h Header) Type() (Type, error) {
	return ParseType(byte(h))
}

type shape byte

const (
	shapeNone shape = iota
	shapeZoneBegin
	shapeZoneEnd
	shapeStringTransfer
	shapeFrameMark
	shapeSourceLocation
	shapeZoneText
	shapeLockAnnounce
	shapeLockWait
	shapeLockObtain
	shapeLockRelease
	shapeLockMark
	shapePlotData
	shapeMessage
	shapeGpuNewContext
	shapeGpuZoneBegin
	shapeGpuZoneEnd
	shapeGpuTime
	shapeGpuResync
)

type schema struct {
	name  string
	shape shape
}

var schemas = [EvCount]schema{
	EvZoneText:              {"ZoneText", shapeZoneText},
	EvMessage:               {"Message", shapeMessage},
	EvZoneBeginAllocSrcLoc:  {"ZoneBeginAllocSrcLoc", shapeZoneBegin},
	EvTerminate:             {"Terminate", shapeNone},
	EvZoneBegin:             {"ZoneBegin", shapeZoneBegin},
	EvZoneEnd:               {"ZoneEnd", shapeZoneEnd},
	EvFrameMarkMsg:          {"FrameMarkMsg", shapeFrameMark},
	EvSourceLocation:        {"SourceLocation", shapeSourceLocation},
	EvLockAnnounce:          {"LockAnnounce", shapeLockAnnounce},
	EvLockWait:              {"LockWait", shapeLockWait},
	EvLockObtain:            {"LockObtain", shapeLockObtain},
	EvLockRelease:           {"LockRelease", shapeLockRelease},
	EvLockMark:              {"LockMark", shapeLockMark},
	EvPlotData:              {"PlotData", shapePlotData},
	EvMessageLiteral:        {"MessageLiteral", shapeMessage},
	EvGpuNewContext:         {"GpuNewContext", shapeGpuNewContext},
	EvGpuZoneBegin:          {"GpuZoneBegin", shapeGpuZoneBegin},
	EvGpuZoneEnd:            {"GpuZoneEnd", shapeGpuZoneEnd},
	EvGpuTime:               {"GpuTime", shapeGpuTime},
	EvGpuResync:             {"GpuResync", shapeGpuResync},
	EvStringData:            {"StringData", shapeStringTransfer},
	EvThreadName:            {"ThreadName", shapeStringTransfer},
	EvCustomStringData:      {"CustomStringData", shapeStringTransfer},
	EvPlotName:              {"PlotName", shapeStringTransfer},
	EvSourceLocationPayload: {"SourceLocationPayload", shapeStringTransfer},
}
