package event

import "unsafe"

// Wire payload sizes, fields are packed with 1 byte alignment.
const (
	zoneBeginSize      = 8 + 8 + 8 + 4
	zoneEndSize        = 8 + 8 + 4
	stringTransferSize = 8
	frameMarkSize      = 8
	sourceLocationSize = 8 + 8 + 8 + 4 + 1 + 1 + 1
	zoneTextSize       = 8 + 8
	lockAnnounceSize   = 4 + 8 + 1
	lockWaitSize       = 4 + 8 + 8
	lockMarkSize       = 4 + 8 + 8
	plotDataSize       = 8 + 8 + 1 + 8
	messageSize        = 8 + 8 + 8
	gpuNewContextSize  = 8 + 8 + 8 + 2 + 1
	gpuZoneBeginSize   = 8 + 8 + 2
	gpuZoneEndSize     = 8 + 2
	gpuTimeSize        = 8 + 2
	gpuResyncSize      = 8 + 8 + 2

	maxPayloadSize = max(
		zoneBeginSize, zoneEndSize, stringTransferSize, frameMarkSize,
		sourceLocationSize, zoneTextSize, lockAnnounceSize, lockWaitSize,
		lockMarkSize, plotDataSize, messageSize, gpuNewContextSize,
		gpuZoneBeginSize, gpuZoneEndSize, gpuTimeSize, gpuResyncSize,
	)
)

const (

	// HeaderSize is the size of the type byte leading every record.
	HeaderSize = 1

	// ItemSize is the size of a record slot holding the largest payload.
	ItemSize = HeaderSize + maxPayloadSize
)

// SizeTable holds the wire size of each record Type, header included. A
// terminate record is a header only.
var SizeTable = [...]int{
	HeaderSize + zoneTextSize,
	HeaderSize + messageSize,
	HeaderSize + zoneBeginSize, // allocated source location
	// above items must be first
	HeaderSize, // terminate
	HeaderSize + zoneBeginSize,
	HeaderSize + zoneEndSize,
	HeaderSize + frameMarkSize,
	HeaderSize + sourceLocationSize,
	HeaderSize + lockAnnounceSize,
	HeaderSize + lockWaitSize,
	HeaderSize + lockWaitSize, // obtain
	HeaderSize + lockWaitSize, // release
	HeaderSize + lockMarkSize,
	HeaderSize + plotDataSize,
	HeaderSize + messageSize, // literal
	HeaderSize + gpuNewContextSize,
	HeaderSize + gpuZoneBeginSize,
	HeaderSize + gpuZoneEndSize,
	HeaderSize + gpuTimeSize,
	HeaderSize + gpuResyncSize,
	// keep all string transfers below
	HeaderSize + stringTransferSize, // string data
	HeaderSize + stringTransferSize, // thread name
	HeaderSize + stringTransferSize, // custom string data
	HeaderSize + stringTransferSize, // plot name
	HeaderSize + stringTransferSize, // allocated source location payload
}

// Compile time checks, a negative array length fails the build.
var (
	_ [ItemSize - 32]struct{}
	_ [32 - ItemSize]struct{}
	_ [len(SizeTable) - int(EvCount)]struct{}
	_ [int(EvCount) - len(SizeTable)]struct{}
	_ [8 - unsafe.Sizeof(uintptr(0))]struct{}
)
