// Package tracegen produces deterministic, realistic record streams for tests,
// benchmarks and the gen command.
package tracegen

import (
	"context"
	"math/rand/v2"

	"github.com/ChenRenault/tracy/event"
)

// Generator describes the shape of a generated stream. The same Generator
// always produces the same records.
type Generator struct {
	Seed    uint64
	Threads int
	Frames  int
	Zones   int
	Locks   int
}

// New returns a Generator with sensible defaults for the given seed.
func New(seed uint64) *Generator {
	return &Generator{Seed: seed, Threads: 4, Frames: 10, Zones: 8, Locks: 2}
}

// Records returns every record Run would emit.
func (g *Generator) Records() []event.Record {
	var out []event.Record
	// Run only fails on a done ctx or an emit error, neither can happen here.
	_ = g.Run(context.Background(), func(rec event.Record) error {
		out = append(out, rec)
		return nil
	})
	return out
}

// Run calls emit for each record of the stream, ending with a terminate
// record. It stops at the first error from emit or when ctx is done.
func (g *Generator) Run(ctx context.Context, emit func(event.Record) error) error {
	s := &stream{
		Generator: g,
		rnd:       rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15)),
		emit:      emit,
		now:       1000,
		next:      0x1000,
	}
	if err := s.preamble(); err != nil {
		return err
	}
	for i := 0; i < g.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.frame(i); err != nil {
			return err
		}
	}
	return emit(event.Record{Type: event.EvTerminate})
}

type stream struct {
	*Generator
	rnd  *rand.Rand
	emit func(event.Record) error
	err  error

	now     int64
	gpuNow  int64
	next    uint64
	threads []uint64
	srclocs []uint64
	locks   []uint32
	plots   []uint64
}

func (s *stream) put(typ event.Type, p event.Payload) {
	if s.err == nil {
		s.err = s.emit(event.Record{Type: typ, Payload: p})
	}
}

// handle returns a new opaque handle, announcing it with a string transfer of
// typ.
func (s *stream) handle(typ event.Type) uint64 {
	s.next += 0x10 + uint64(s.rnd.IntN(4))*8
	s.put(typ, event.StringTransfer{Ptr: s.next})
	return s.next
}

func (s *stream) tick() int64 {
	s.now += 1 + s.rnd.Int64N(250)
	return s.now
}

func (s *stream) preamble() error {
	for i := 0; i < s.Threads; i++ {
		s.threads = append(s.threads, uint64(0x100+i))
		s.handle(event.EvThreadName)
	}
	for i := 0; i < s.Zones; i++ {
		loc := event.SourceLocation{
			Name:     s.handle(event.EvStringData),
			Function: s.handle(event.EvStringData),
			File:     s.handle(event.EvStringData),
			Line:     uint32(1 + s.rnd.IntN(2000)),
			R:        uint8(s.rnd.UintN(256)),
			G:        uint8(s.rnd.UintN(256)),
			B:        uint8(s.rnd.UintN(256)),
		}
		s.put(event.EvSourceLocation, loc)
		s.srclocs = append(s.srclocs, loc.Name)
	}
	for i := 0; i < s.Locks; i++ {
		id := uint32(i + 1)
		kind := event.Lockable
		if i%2 == 1 {
			kind = event.SharedLockable
		}
		s.put(event.EvLockAnnounce, event.LockAnnounce{ID: id, LockLoc: s.handle(event.EvStringData), Kind: kind})
		s.locks = append(s.locks, id)
	}
	for i := 0; i < 3; i++ {
		s.plots = append(s.plots, s.handle(event.EvPlotName))
	}
	var owner uint64
	if len(s.threads) > 0 {
		owner = s.threads[0]
	}
	s.gpuNow = s.rnd.Int64N(1 << 20)
	s.put(event.EvGpuNewContext, event.GpuNewContext{
		CPUTime:      s.tick(),
		GPUTime:      s.gpuNow,
		Thread:       owner,
		Context:      0,
		AccuracyBits: 64,
	})
	return s.err
}

func (s *stream) frame(n int) error {
	for _, thread := range s.threads {
		s.zones(thread)
	}
	s.plot()
	s.gpu(n)
	s.put(event.EvFrameMarkMsg, event.FrameMark{Time: s.tick()})
	return s.err
}

func (s *stream) zones(thread uint64) {
	cpu := uint32(s.rnd.IntN(8))
	for i := 0; i < s.Zones && len(s.srclocs) > 0; i++ {
		loc := s.srclocs[s.rnd.IntN(len(s.srclocs))]
		begin := event.ZoneBegin{Time: s.tick(), Thread: thread, SrcLoc: loc, CPU: cpu}
		if s.rnd.IntN(8) == 0 {
			// allocated source locations travel with their payload
			begin.SrcLoc = s.handle(event.EvSourceLocationPayload)
			s.put(event.EvZoneBeginAllocSrcLoc, begin)
		} else {
			s.put(event.EvZoneBegin, begin)
		}

		switch s.rnd.IntN(6) {
		case 0:
			s.put(event.EvZoneText, event.ZoneText{Thread: thread, Text: s.handle(event.EvCustomStringData)})
		case 1:
			s.put(event.EvMessage, event.Message{Time: s.tick(), Thread: thread, Text: s.handle(event.EvCustomStringData)})
		case 2:
			s.put(event.EvMessageLiteral, event.Message{Time: s.tick(), Thread: thread, Text: loc})
		case 3:
			s.lock(thread, loc)
		}
		s.put(event.EvZoneEnd, event.ZoneEnd{Time: s.tick(), Thread: thread, CPU: cpu})
	}
}

func (s *stream) lock(thread, loc uint64) {
	if len(s.locks) == 0 {
		return
	}
	id := s.locks[s.rnd.IntN(len(s.locks))]
	s.put(event.EvLockWait, event.LockWait{ID: id, Time: s.tick(), Thread: thread})
	s.put(event.EvLockObtain, event.LockObtain{ID: id, Time: s.tick(), Thread: thread})
	s.put(event.EvLockMark, event.LockMark{ID: id, Thread: thread, SrcLoc: loc})
	s.put(event.EvLockRelease, event.LockRelease{ID: id, Time: s.tick(), Thread: thread})
}

func (s *stream) plot() {
	for i, name := range s.plots {
		switch i % 3 {
		case 0:
			s.put(event.EvPlotData, event.NewPlotFloat(name, s.tick(), s.rnd.Float32()*100))
		case 1:
			s.put(event.EvPlotData, event.NewPlotDouble(name, s.tick(), s.rnd.NormFloat64()))
		default:
			s.put(event.EvPlotData, event.NewPlotInt(name, s.tick(), s.rnd.Int64N(1<<16)-1<<15))
		}
	}
}

func (s *stream) gpu(frame int) {
	var loc uint64
	if len(s.srclocs) > 0 {
		loc = s.srclocs[s.rnd.IntN(len(s.srclocs))]
	}
	s.put(event.EvGpuZoneBegin, event.GpuZoneBegin{CPUTime: s.tick(), SrcLoc: loc})
	s.gpuNow += 1 + s.rnd.Int64N(1000)
	s.put(event.EvGpuTime, event.GpuTime{GPUTime: s.gpuNow})
	s.put(event.EvGpuZoneEnd, event.GpuZoneEnd{CPUTime: s.tick()})
	s.gpuNow += 1 + s.rnd.Int64N(1000)
	s.put(event.EvGpuTime, event.GpuTime{GPUTime: s.gpuNow})
	if frame > 0 && frame%5 == 0 {
		s.put(event.EvGpuResync, event.GpuResync{CPUTime: s.tick(), GPUTime: s.gpuNow})
	}
}
