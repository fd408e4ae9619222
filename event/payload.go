package event

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Records use the producers native byte order, there is no in band marker.
var order = binary.NativeEndian

// Payload is implemented by each of the fixed shape record bodies in this
// package. The set is closed, a Record holds exactly one of them selected by
// its Type.
type Payload interface {
	shape() shape
	size() int
	put(b []byte)
}

// ZoneBegin is the payload of EvZoneBegin and EvZoneBeginAllocSrcLoc.
type ZoneBegin struct {
	Time   int64
	Thread uint64
	SrcLoc uint64
	CPU    uint32
}

func (ZoneBegin) shape() shape { return shapeZoneBegin }
func (ZoneBegin) size() int { return zoneBeginSize }

func (p ZoneBegin) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.Time))
	order.PutUint64(b[8:], p.Thread)
	order.PutUint64(b[16:], p.SrcLoc)
	order.PutUint32(b[24:], p.CPU)
}

func getZoneBegin(b []byte) ZoneBegin {
	return ZoneBegin{
		Time:   int64(order.Uint64(b[0:])),
		Thread: order.Uint64(b[8:]),
		SrcLoc: order.Uint64(b[16:]),
		CPU:    order.Uint32(b[24:]),
	}
}

// ZoneEnd is the payload of EvZoneEnd.
type ZoneEnd struct {
	Time   int64
	Thread uint64
	CPU    uint32
}

func (ZoneEnd) shape() shape { return shapeZoneEnd }
func (ZoneEnd) size() int { return zoneEndSize }

func (p ZoneEnd) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.Time))
	order.PutUint64(b[8:], p.Thread)
	order.PutUint32(b[16:], p.CPU)
}

func getZoneEnd(b []byte) ZoneEnd {
	return ZoneEnd{
		Time:   int64(order.Uint64(b[0:])),
		Thread: order.Uint64(b[8:]),
		CPU:    order.Uint32(b[16:]),
	}
}

// StringTransfer is the payload shared by the five string transfer types,
// EvStringData through EvSourceLocationPayload. Ptr is an opaque handle that
// is correlated with string bytes outside of this package.
type StringTransfer struct {
	Ptr uint64
}

func (StringTransfer) shape() shape { return shapeStringTransfer }
func (StringTransfer) size() int { return stringTransferSize }
func (p StringTransfer) put(b []byte) { order.PutUint64(b, p.Ptr) }

// FrameMark is the payload of EvFrameMarkMsg.
type FrameMark struct {
	Time int64
}

func (FrameMark) shape() shape { return shapeFrameMark }
func (FrameMark) size() int { return frameMarkSize }
func (p FrameMark) put(b []byte) { order.PutUint64(b, uint64(p.Time)) }

// SourceLocation is the payload of EvSourceLocation. Name, Function and File
// are opaque handles.
type SourceLocation struct {
	Name     uint64
	Function uint64
	File     uint64
	Line     uint32
	R, G, B  uint8
}

func (SourceLocation) shape() shape { return shapeSourceLocation }
func (SourceLocation) size() int { return sourceLocationSize }

func (p SourceLocation) put(b []byte) {
	order.PutUint64(b[0:], p.Name)
	order.PutUint64(b[8:], p.Function)
	order.PutUint64(b[16:], p.File)
	order.PutUint32(b[24:], p.Line)
	b[28], b[29], b[30] = p.R, p.G, p.B
}

func getSourceLocation(b []byte) SourceLocation {
	return SourceLocation{
		Name:     order.Uint64(b[0:]),
		Function: order.Uint64(b[8:]),
		File:     order.Uint64(b[16:]),
		Line:     order.Uint32(b[24:]),
		R:        b[28],
		G:        b[29],
		B:        b[30],
	}
}

// ZoneText is the payload of EvZoneText.
type ZoneText struct {
	Thread uint64
	Text   uint64
}

func (ZoneText) shape() shape { return shapeZoneText }
func (ZoneText) size() int { return zoneTextSize }

func (p ZoneText) put(b []byte) {
	order.PutUint64(b[0:], p.Thread)
	order.PutUint64(b[8:], p.Text)
}

// LockKind identifies the kind of lock in a LockAnnounce payload.
type LockKind uint8

// Lock kinds.
const (
	Lockable LockKind = iota
	SharedLockable
)

// Valid returns true if the lock kind is known, false otherwise.
func (k LockKind) Valid() bool {
	return k <= SharedLockable
}

// String implements fmt.Stringer.
func (k LockKind) String() string {
	switch k {
	case Lockable:
		return `Lockable`
	case SharedLockable:
		return `SharedLockable`
	}
	return fmt.Sprintf(`LockKind(0x%x)`, uint8(k))
}

// LockAnnounce is the payload of EvLockAnnounce.
type LockAnnounce struct {
	ID      uint32
	LockLoc uint64
	Kind    LockKind
}

func (LockAnnounce) shape() shape { return shapeLockAnnounce }
func (LockAnnounce) size() int { return lockAnnounceSize }

func (p LockAnnounce) put(b []byte) {
	order.PutUint32(b[0:], p.ID)
	order.PutUint64(b[4:], p.LockLoc)
	b[12] = byte(p.Kind)
}

// LockWait is the payload of EvLockWait.
type LockWait struct {
	ID     uint32
	Time   int64
	Thread uint64
}

func (LockWait) shape() shape { return shapeLockWait }
func (LockWait) size() int { return lockWaitSize }

func (p LockWait) put(b []byte) {
	order.PutUint32(b[0:], p.ID)
	order.PutUint64(b[4:], uint64(p.Time))
	order.PutUint64(b[12:], p.Thread)
}

func getLockWait(b []byte) LockWait {
	return LockWait{
		ID:     order.Uint32(b[0:]),
		Time:   int64(order.Uint64(b[4:])),
		Thread: order.Uint64(b[12:]),
	}
}

// LockObtain is the payload of EvLockObtain.
type LockObtain LockWait

func (LockObtain) shape() shape { return shapeLockObtain }
func (LockObtain) size() int { return lockWaitSize }
func (p LockObtain) put(b []byte) { LockWait(p).put(b) }

// LockRelease is the payload of EvLockRelease.
type LockRelease LockWait

func (LockRelease) shape() shape { return shapeLockRelease }
func (LockRelease) size() int { return lockWaitSize }
func (p LockRelease) put(b []byte) { LockWait(p).put(b) }

// LockMark is the payload of EvLockMark.
type LockMark struct {
	ID     uint32
	Thread uint64
	SrcLoc uint64
}

func (LockMark) shape() shape { return shapeLockMark }
func (LockMark) size() int { return lockMarkSize }

func (p LockMark) put(b []byte) {
	order.PutUint32(b[0:], p.ID)
	order.PutUint64(b[4:], p.Thread)
	order.PutUint64(b[12:], p.SrcLoc)
}

// PlotKind selects how the Value of a PlotData payload is interpreted.
type PlotKind uint8

// Plot value kinds.
const (
	PlotFloat PlotKind = iota
	PlotDouble
	PlotInt
)

// Valid returns true if the plot kind is known, false otherwise.
func (k PlotKind) Valid() bool {
	return k <= PlotInt
}

// String implements fmt.Stringer.
func (k PlotKind) String() string {
	switch k {
	case PlotFloat:
		return `Float`
	case PlotDouble:
		return `Double`
	case PlotInt:
		return `Int`
	}
	return fmt.Sprintf(`PlotKind(0x%x)`, uint8(k))
}

// PlotData is the payload of EvPlotData. Value holds the raw bytes of an 8
// byte union, a float32 occupies the first 4 bytes.
type PlotData struct {
	Name  uint64
	Time  int64
	Kind  PlotKind
	Value [8]byte
}

// NewPlotFloat returns a PlotData holding a 32-bit float.
func NewPlotFloat(name uint64, time int64, v float32) PlotData {
	p := PlotData{Name: name, Time: time, Kind: PlotFloat}
	order.PutUint32(p.Value[:], math.Float32bits(v))
	return p
}

// NewPlotDouble returns a PlotData holding a 64-bit float.
func NewPlotDouble(name uint64, time int64, v float64) PlotData {
	p := PlotData{Name: name, Time: time, Kind: PlotDouble}
	order.PutUint64(p.Value[:], math.Float64bits(v))
	return p
}

// NewPlotInt returns a PlotData holding a 64-bit signed integer.
func NewPlotInt(name uint64, time int64, v int64) PlotData {
	p := PlotData{Name: name, Time: time, Kind: PlotInt}
	order.PutUint64(p.Value[:], uint64(v))
	return p
}

// Float interprets Value as a 32-bit float, callers should check Kind first.
func (p PlotData) Float() float32 {
	return math.Float32frombits(order.Uint32(p.Value[:]))
}

// Double interprets Value as a 64-bit float, callers should check Kind first.
func (p PlotData) Double() float64 {
	return math.Float64frombits(order.Uint64(p.Value[:]))
}

// Int interprets Value as a 64-bit signed integer, callers should check Kind
// first.
func (p PlotData) Int() int64 {
	return int64(order.Uint64(p.Value[:]))
}

// Number returns the value as a float64 according to Kind, along with an
// *InvalidPlotKindError when Kind is unknown.
func (p PlotData) Number() (float64, error) {
	switch p.Kind {
	case PlotFloat:
		return float64(p.Float()), nil
	case PlotDouble:
		return p.Double(), nil
	case PlotInt:
		return float64(p.Int()), nil
	}
	return 0, &InvalidPlotKindError{Kind: byte(p.Kind)}
}

// String implements fmt.Stringer, printing the value per Kind.
func (p PlotData) String() string {
	var v any = `?`
	switch p.Kind {
	case PlotFloat:
		v = p.Float()
	case PlotDouble:
		v = p.Double()
	case PlotInt:
		v = p.Int()
	}
	return fmt.Sprintf(`{Name:%v Time:%v Kind:%v Value:%v}`, p.Name, p.Time, p.Kind, v)
}

func (PlotData) shape() shape { return shapePlotData }
func (PlotData) size() int { return plotDataSize }

func (p PlotData) put(b []byte) {
	order.PutUint64(b[0:], p.Name)
	order.PutUint64(b[8:], uint64(p.Time))
	b[16] = byte(p.Kind)
	copy(b[17:25], p.Value[:])
}

// Message is the payload of EvMessage and EvMessageLiteral.
type Message struct {
	Time   int64
	Thread uint64
	Text   uint64
}

func (Message) shape() shape { return shapeMessage }
func (Message) size() int { return messageSize }

func (p Message) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.Time))
	order.PutUint64(b[8:], p.Thread)
	order.PutUint64(b[16:], p.Text)
}

// GpuNewContext is the payload of EvGpuNewContext.
type GpuNewContext struct {
	CPUTime      int64
	GPUTime      int64
	Thread       uint64
	Context      uint16
	AccuracyBits uint8
}

func (GpuNewContext) shape() shape { return shapeGpuNewContext }
func (GpuNewContext) size() int { return gpuNewContextSize }

func (p GpuNewContext) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.CPUTime))
	order.PutUint64(b[8:], uint64(p.GPUTime))
	order.PutUint64(b[16:], p.Thread)
	order.PutUint16(b[24:], p.Context)
	b[26] = p.AccuracyBits
}

// GpuZoneBegin is the payload of EvGpuZoneBegin.
type GpuZoneBegin struct {
	CPUTime int64
	SrcLoc  uint64
	Context uint16
}

func (GpuZoneBegin) shape() shape { return shapeGpuZoneBegin }
func (GpuZoneBegin) size() int { return gpuZoneBeginSize }

func (p GpuZoneBegin) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.CPUTime))
	order.PutUint64(b[8:], p.SrcLoc)
	order.PutUint16(b[16:], p.Context)
}

// GpuZoneEnd is the payload of EvGpuZoneEnd.
type GpuZoneEnd struct {
	CPUTime int64
	Context uint16
}

func (GpuZoneEnd) shape() shape { return shapeGpuZoneEnd }
func (GpuZoneEnd) size() int { return gpuZoneEndSize }

func (p GpuZoneEnd) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.CPUTime))
	order.PutUint16(b[8:], p.Context)
}

// GpuTime is the payload of EvGpuTime.
type GpuTime struct {
	GPUTime int64
	Context uint16
}

func (GpuTime) shape() shape { return shapeGpuTime }
func (GpuTime) size() int { return gpuTimeSize }

func (p GpuTime) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.GPUTime))
	order.PutUint16(b[8:], p.Context)
}

// GpuResync is the payload of EvGpuResync.
type GpuResync struct {
	CPUTime int64
	GPUTime int64
	Context uint16
}

func (GpuResync) shape() shape { return shapeGpuResync }
func (GpuResync) size() int { return gpuResyncSize }

func (p GpuResync) put(b []byte) {
	order.PutUint64(b[0:], uint64(p.CPUTime))
	order.PutUint64(b[8:], uint64(p.GPUTime))
	order.PutUint16(b[16:], p.Context)
}

// getPayload decodes the payload of the given shape from b, which must hold
// at least the wire payload size of s.
func getPayload(s shape, b []byte) (Payload, error) {
	switch s {
	case shapeZoneBegin:
		return getZoneBegin(b), nil
	case shapeZoneEnd:
		return getZoneEnd(b), nil
	case shapeStringTransfer:
		return StringTransfer{Ptr: order.Uint64(b)}, nil
	case shapeFrameMark:
		return FrameMark{Time: int64(order.Uint64(b))}, nil
	case shapeSourceLocation:
		return getSourceLocation(b), nil
	case shapeZoneText:
		return ZoneText{Thread: order.Uint64(b[0:]), Text: order.Uint64(b[8:])}, nil
	case shapeLockAnnounce:
		k := LockKind(b[12])
		if !k.Valid() {
			return nil, &InvalidLockKindError{Kind: b[12]}
		}
		return LockAnnounce{
			ID:      order.Uint32(b[0:]),
			LockLoc: order.Uint64(b[4:]),
			Kind:    k,
		}, nil
	case shapeLockWait:
		return getLockWait(b), nil
	case shapeLockObtain:
		return LockObtain(getLockWait(b)), nil
	case shapeLockRelease:
		return LockRelease(getLockWait(b)), nil
	case shapeLockMark:
		return LockMark{
			ID:     order.Uint32(b[0:]),
			Thread: order.Uint64(b[4:]),
			SrcLoc: order.Uint64(b[12:]),
		}, nil
	case shapePlotData:
		k := PlotKind(b[16])
		if !k.Valid() {
			return nil, &InvalidPlotKindError{Kind: b[16]}
		}
		p := PlotData{
			Name: order.Uint64(b[0:]),
			Time: int64(order.Uint64(b[8:])),
			Kind: k,
		}
		copy(p.Value[:], b[17:25])
		return p, nil
	case shapeMessage:
		return Message{
			Time:   int64(order.Uint64(b[0:])),
			Thread: order.Uint64(b[8:]),
			Text:   order.Uint64(b[16:]),
		}, nil
	case shapeGpuNewContext:
		return GpuNewContext{
			CPUTime:      int64(order.Uint64(b[0:])),
			GPUTime:      int64(order.Uint64(b[8:])),
			Thread:       order.Uint64(b[16:]),
			Context:      order.Uint16(b[24:]),
			AccuracyBits: b[26],
		}, nil
	case shapeGpuZoneBegin:
		return GpuZoneBegin{
			CPUTime: int64(order.Uint64(b[0:])),
			SrcLoc:  order.Uint64(b[8:]),
			Context: order.Uint16(b[16:]),
		}, nil
	case shapeGpuZoneEnd:
		return GpuZoneEnd{CPUTime: int64(order.Uint64(b[0:])), Context: order.Uint16(b[8:])}, nil
	case shapeGpuTime:
		return GpuTime{GPUTime: int64(order.Uint64(b[0:])), Context: order.Uint16(b[8:])}, nil
	case shapeGpuResync:
		return GpuResync{
			CPUTime: int64(order.Uint64(b[0:])),
			GPUTime: int64(order.Uint64(b[8:])),
			Context: order.Uint16(b[16:]),
		}, nil
	}
	return nil, fmt.Errorf(`%w: no decoder for payload shape %d`, ErrPayload, s)
}
