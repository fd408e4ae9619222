package encoding

import "github.com/ChenRenault/tracy/event"

// Stats summarizes the records a Decoder returned since it was created or
// last Reset.
type Stats struct {
	Records    int
	Bytes      int
	Terminated bool
	Types      [event.EvCount]int
}

// visit the given record which occupied size bytes of the stream.
func (s *Stats) visit(rec *event.Record, size int) {
	s.Records++
	s.Bytes += size
	s.Types[rec.Type]++
	if rec.Type == event.EvTerminate {
		s.Terminated = true
	}
}

// Count returns the number of records of typ seen, or 0 for invalid types.
func (s Stats) Count(typ event.Type) int {
	if !typ.Valid() {
		return 0
	}
	return s.Types[typ]
}
