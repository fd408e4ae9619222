package encoding

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ChenRenault/tracy/event"
)

// rwLimiter fails with err once n bytes have been read or written, returning
// a short count when err is nil.
type rwLimiter struct {
	r   io.Reader
	w   io.Writer
	n   int
	err error
}

func (l *rwLimiter) Read(p []byte) (int, error) {
	if l.n <= 0 {
		if l.err != nil {
			return 0, l.err
		}
		return 0, io.EOF
	}
	if len(p) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= n
	return n, err
}

func (l *rwLimiter) Write(p []byte) (int, error) {
	if len(p) <= l.n {
		n, err := l.w.Write(p)
		l.n -= n
		return n, err
	}
	n, _ := l.w.Write(p[:l.n])
	l.n = 0
	return n, l.err
}

var testRecords = []event.Record{
	{Type: event.EvThreadName, Payload: event.StringTransfer{Ptr: 1}},
	{Type: event.EvSourceLocation, Payload: event.SourceLocation{
		Name: 2, Function: 3, File: 4, Line: 42, R: 0xff, G: 0x80, B: 0x01}},
	{Type: event.EvZoneBegin, Payload: event.ZoneBegin{Time: 100, Thread: 1, SrcLoc: 7}},
	{Type: event.EvZoneText, Payload: event.ZoneText{Thread: 1, Text: 5}},
	{Type: event.EvLockAnnounce, Payload: event.LockAnnounce{ID: 9, LockLoc: 6, Kind: event.Lockable}},
	{Type: event.EvLockWait, Payload: event.LockWait{ID: 9, Time: 110, Thread: 1}},
	{Type: event.EvLockObtain, Payload: event.LockObtain{ID: 9, Time: 111, Thread: 1}},
	{Type: event.EvLockMark, Payload: event.LockMark{ID: 9, Thread: 1, SrcLoc: 7}},
	{Type: event.EvLockRelease, Payload: event.LockRelease{ID: 9, Time: 120, Thread: 1}},
	{Type: event.EvPlotData, Payload: event.NewPlotInt(8, 125, -42)},
	{Type: event.EvMessage, Payload: event.Message{Time: 130, Thread: 1, Text: 10}},
	{Type: event.EvGpuNewContext, Payload: event.GpuNewContext{
		CPUTime: 131, GPUTime: 5, Thread: 1, Context: 1, AccuracyBits: 64}},
	{Type: event.EvGpuZoneBegin, Payload: event.GpuZoneBegin{CPUTime: 132, SrcLoc: 7, Context: 1}},
	{Type: event.EvGpuTime, Payload: event.GpuTime{GPUTime: 6, Context: 1}},
	{Type: event.EvGpuZoneEnd, Payload: event.GpuZoneEnd{CPUTime: 140, Context: 1}},
	{Type: event.EvGpuResync, Payload: event.GpuResync{CPUTime: 141, GPUTime: 7, Context: 1}},
	{Type: event.EvZoneEnd, Payload: event.ZoneEnd{Time: 150, Thread: 1}},
	{Type: event.EvFrameMarkMsg, Payload: event.FrameMark{Time: math.MaxInt64}},
	{Type: event.EvTerminate},
}

func makeBuffer(t testing.TB, recs []event.Record, opts ...Option) *bytes.Buffer {
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf, opts...)
	for _, rec := range recs {
		if err := enc.Emit(rec); err != nil {
			t.Fatal(err)
		}
	}
	return buf
}

func decodeAll(dec *Decoder) ([]event.Record, error) {
	var out []event.Record
	for dec.More() {
		var rec event.Record
		if err := dec.Decode(&rec); err != nil {
			break // err will be in Err()
		}
		out = append(out, rec)
	}
	return out, dec.Err()
}

func checkRecords(t *testing.T, exp, got []event.Record) {
	if len(exp) != len(got) {
		t.Fatalf(`exp %v records; got %v`, len(exp), len(got))
	}
	for i := range exp {
		if exp[i] != got[i] {
			t.Fatalf(`record #%v: exp %v; got %v`, i, exp[i], got[i])
		}
	}
}

func checkDecoder(t *testing.T, dec *Decoder, exp error) {
	if dec == nil {
		t.Fatal(`exp non-nil decoder`)
	}
	if err := dec.Err(); !errors.Is(err, exp) {
		t.Fatalf(`exp Err() to be %v; got %v`, exp, err)
	}
	if dec.More() {
		t.Fatal(`More() should return false once the stream has ended`)
	}

	// all future calls should return same err
	sentinel := dec.Err()
	for i := 0; i < 3; i++ {
		if err := dec.Err(); err != sentinel {
			t.Fatal(`exp identical err for all future calls`)
		}

		var rec event.Record
		err := dec.Decode(&rec)
		if sentinel == nil && err != io.EOF {
			t.Fatalf(`exp io.EOF after stream end; got %v`, err)
		}
		if sentinel != nil && err != sentinel {
			t.Fatal(`exp err to remain unchanged`)
		}
		if rec.Payload != nil || rec.Type != 0 {
			t.Fatalf(`exp zero record; got %v`, rec)
		}
	}
}

func TestDecoder(t *testing.T) {
	t.Run(`Decode`, func(t *testing.T) {
		dec := NewDecoder(makeBuffer(t, testRecords))
		got, err := decodeAll(dec)
		if err != nil {
			t.Fatalf(`exp nil err; got %v`, err)
		}
		checkRecords(t, testRecords, got)
		checkDecoder(t, dec, nil)
		if !dec.Terminated() {
			t.Fatal(`exp terminated stream`)
		}
	})
	t.Run(`Scenario`, func(t *testing.T) {
		recs := []event.Record{
			{Type: event.EvZoneBegin, Payload: event.ZoneBegin{Time: 100, Thread: 1, SrcLoc: 7, CPU: 0}},
			{Type: event.EvZoneEnd, Payload: event.ZoneEnd{Time: 150, Thread: 1, CPU: 0}},
			{Type: event.EvTerminate},
		}
		dec := NewDecoder(makeBuffer(t, recs))

		var offs []int
		var got []event.Record
		for dec.More() {
			var rec event.Record
			if err := dec.Decode(&rec); err != nil {
				t.Fatal(err)
			}
			got = append(got, rec)
			offs = append(offs, dec.Offset())
		}
		checkRecords(t, recs, got)
		if exp := []int{29, 50, 51}; len(offs) != 3 || offs[0] != exp[0] ||
			offs[1] != exp[1] || offs[2] != exp[2] {
			t.Fatalf(`exp offsets %v; got %v`, exp, offs)
		}
	})
	t.Run(`TrailingAfterTerminate`, func(t *testing.T) {
		buf := makeBuffer(t, testRecords)
		buf.Write([]byte{0xff, 0xff})
		got, err := decodeAll(NewDecoder(buf))
		if err != nil {
			t.Fatalf(`exp nil err; got %v`, err)
		}
		checkRecords(t, testRecords, got)
	})
	t.Run(`NoTerminate`, func(t *testing.T) {
		recs := testRecords[:len(testRecords)-1]
		dec := NewDecoder(makeBuffer(t, recs))
		got, err := decodeAll(dec)
		if err != nil {
			t.Fatalf(`exp nil err; got %v`, err)
		}
		checkRecords(t, recs, got)
		if dec.Terminated() {
			t.Fatal(`exp stream without terminate record`)
		}
	})
	t.Run(`Empty`, func(t *testing.T) {
		dec := NewDecoder(new(bytes.Buffer))
		var rec event.Record
		if err := dec.Decode(&rec); err != io.EOF {
			t.Fatalf(`exp io.EOF; got %v`, err)
		}
		checkDecoder(t, dec, nil)
	})
	t.Run(`NilRecord`, func(t *testing.T) {
		dec := NewDecoder(new(bytes.Buffer))
		if err := dec.Decode(nil); err == nil {
			t.Error(`exp non-nil err`)
		}
		if err := dec.Err(); err != nil {
			t.Errorf(`exp nil Err() after nil record; got %v`, err)
		}
	})
	t.Run(`NilReader`, func(t *testing.T) {
		dec := NewDecoder(nil)
		if dec.More() {
			t.Error(`exp More() false for nil reader`)
		}
		dec.Reset(new(bytes.Buffer))
		if err := dec.Err(); err != nil {
			t.Fatalf(`exp nil err after Reset; got %v`, err)
		}
		if dec.Reset(nil); dec.err == nil {
			t.Error(`exp non-nil err`)
		}
	})
	t.Run(`Slots`, func(t *testing.T) {
		buf := makeBuffer(t, testRecords, WithSlots())
		if exp, got := len(testRecords)*event.ItemSize, buf.Len(); exp != got {
			t.Fatalf(`exp %v bytes; got %v`, exp, got)
		}
		got, err := decodeAll(NewDecoder(buf, WithSlots()))
		if err != nil {
			t.Fatalf(`exp nil err; got %v`, err)
		}
		checkRecords(t, testRecords, got)
	})
}

func TestDecoderReset(t *testing.T) {
	dec := NewDecoder(makeBuffer(t, testRecords[:2]))
	if _, err := decodeAll(dec); err != nil {
		t.Fatal(err)
	}

	// ensure decoder recovers after reset and reuses same bufio.Reader
	cur := dec.buf.Reader
	dec.Reset(makeBuffer(t, testRecords))
	if cur != dec.buf.Reader {
		t.Fatal(`expected decoder to reuse same bufio.Reader`)
	}
	if off := dec.Offset(); off != 0 {
		t.Fatalf(`exp offset to clear after Reset; got %v`, off)
	}
	if n := dec.Stats().Records; n != 0 {
		t.Fatalf(`exp stats to clear after Reset; got %v`, n)
	}
	got, err := decodeAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	checkRecords(t, testRecords, got)

	br := bufio.NewReader(makeBuffer(t, testRecords))
	dec.Reset(br)
	if br != dec.buf.Reader {
		t.Fatal(`expected decoder to use given bufio.Reader`)
	}
}

func TestDecoderTruncated(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithSlots()}} {
		full := makeBuffer(t, testRecords, opts...).Bytes()

		// Every cut within a record must fail, every cut on a boundary must
		// succeed with the records before it.
		bounds := map[int]int{0: 0}
		dec := NewDecoder(bytes.NewReader(full), opts...)
		for n := 1; dec.More(); n++ {
			var rec event.Record
			if err := dec.Decode(&rec); err != nil {
				t.Fatal(err)
			}
			bounds[dec.Offset()] = n
		}

		for i := 0; i < len(full); i++ {
			dec.Reset(bytes.NewReader(full[:i]))
			got, err := decodeAll(dec)
			if n, ok := bounds[i]; ok {
				if err != nil {
					t.Fatalf(`exp nil err at boundary %v; got %v`, i, err)
				}
				checkRecords(t, testRecords[:n], got)
				continue
			}
			if !errors.Is(err, event.ErrTruncated) {
				t.Fatalf(`exp truncated err at %v; got %v`, i, err)
			}
			var te *event.TruncatedError
			if !errors.As(err, &te) || te.Got >= te.Want {
				t.Fatalf(`exp *event.TruncatedError at %v; got %#v`, i, err)
			}
			checkDecoder(t, dec, event.ErrTruncated)
		}
	}
}

func TestDecoderErrors(t *testing.T) {
	t.Run(`UnknownType`, func(t *testing.T) {
		buf := makeBuffer(t, testRecords[:2])
		buf.WriteByte(byte(event.EvCount))
		buf.Write(make([]byte, 40))

		dec := NewDecoder(buf)
		got, err := decodeAll(dec)
		if !errors.Is(err, event.ErrUnknownType) {
			t.Fatalf(`exp ErrUnknownType; got %v`, err)
		}
		if exp := `unknown record type 0x19 at 0x29`; err.Error() != exp {
			t.Fatalf(`exp %q; got %q`, exp, err.Error())
		}
		checkRecords(t, testRecords[:2], got)
		checkDecoder(t, dec, event.ErrUnknownType)
	})
	t.Run(`PlotKind`, func(t *testing.T) {
		b := makeBuffer(t, []event.Record{testRecords[9]}).Bytes()
		b[event.HeaderSize+16] = 0xee

		dec := NewDecoder(bytes.NewReader(b))
		if _, err := decodeAll(dec); !errors.Is(err, event.ErrInvalidPlotKind) {
			t.Fatalf(`exp ErrInvalidPlotKind; got %v`, err)
		}
		checkDecoder(t, dec, event.ErrInvalidPlotKind)
	})
	t.Run(`LockKind`, func(t *testing.T) {
		b := makeBuffer(t, []event.Record{testRecords[4]}).Bytes()
		b[event.HeaderSize+12] = 2

		dec := NewDecoder(bytes.NewReader(b))
		if _, err := decodeAll(dec); !errors.Is(err, event.ErrInvalidLockKind) {
			t.Fatalf(`exp ErrInvalidLockKind; got %v`, err)
		}
	})
	t.Run(`Propagation`, func(t *testing.T) {
		sentinel := errors.New(`sentinel`)
		full := makeBuffer(t, testRecords).Bytes()
		for i := 0; i < len(full); i++ {
			r := &rwLimiter{r: bytes.NewReader(full), n: i, err: sentinel}
			dec := NewDecoder(r, WithBufferSize(minBufferSize))
			if _, err := decodeAll(dec); !errors.Is(err, sentinel) {
				t.Fatalf(`exp sentinel err at %v; got %v`, i, err)
			}
		}
	})
}

type testObserver struct {
	sizes []int
	errs  []error
}

func (o *testObserver) Observe(rec *event.Record, size int) {
	o.sizes = append(o.sizes, size)
}

func (o *testObserver) ObserveError(err error) {
	o.errs = append(o.errs, err)
}

func TestDecoderObserver(t *testing.T) {
	obs := new(testObserver)
	buf := makeBuffer(t, testRecords)
	total := buf.Len()
	buf.Truncate(total - 1)
	buf.Write([]byte{byte(event.EvFrameMarkMsg), 1, 2})

	dec := NewDecoder(buf, WithObserver(obs))
	if _, err := decodeAll(dec); !errors.Is(err, event.ErrTruncated) {
		t.Fatalf(`exp ErrTruncated; got %v`, err)
	}
	if exp, got := len(testRecords)-1, len(obs.sizes); exp != got {
		t.Fatalf(`exp %v observed records; got %v`, exp, got)
	}
	var sum int
	for _, n := range obs.sizes {
		sum += n
	}
	if exp := total - 1; sum != exp {
		t.Fatalf(`exp %v observed bytes; got %v`, exp, sum)
	}
	if len(obs.errs) != 1 || !errors.Is(obs.errs[0], event.ErrTruncated) {
		t.Fatalf(`exp a single truncated err; got %v`, obs.errs)
	}
}
