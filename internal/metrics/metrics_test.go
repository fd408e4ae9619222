package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChenRenault/tracy/encoding"
	"github.com/ChenRenault/tracy/event"
)

func TestReason(t *testing.T) {
	tests := []struct {
		err error
		exp string
	}{
		{&event.UnknownTypeError{Type: 0xff}, "unknown_type"},
		{fmt.Errorf("%w at 0x10", &event.TruncatedError{}), "truncated"},
		{&event.InvalidPlotKindError{Kind: 4}, "invalid_plot_kind"},
		{&event.InvalidLockKindError{Kind: 4}, "invalid_lock_kind"},
		{errors.New("boom"), "io"},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, Reason(test.err))
	}
}

func TestObserver(t *testing.T) {
	recs := []event.Record{
		{Type: event.EvZoneBegin, Payload: event.ZoneBegin{Time: 100, Thread: 1, SrcLoc: 7}},
		{Type: event.EvZoneEnd, Payload: event.ZoneEnd{Time: 150, Thread: 1}},
		{Type: event.EvZoneBegin, Payload: event.ZoneBegin{Time: 160, Thread: 1, SrcLoc: 7}},
		{Type: event.EvTerminate},
	}
	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf)
	for _, rec := range recs {
		require.NoError(t, enc.Emit(rec))
	}
	buf.WriteByte(0xff)

	m := New()
	dec := encoding.NewDecoder(&buf, encoding.WithObserver(m))
	var rec event.Record
	for dec.More() {
		require.NoError(t, dec.Decode(&rec))
	}
	require.NoError(t, dec.Err())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Records.WithLabelValues("ZoneBegin")))
	assert.Equal(t, 58.0, testutil.ToFloat64(m.Bytes.WithLabelValues("ZoneBegin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Streams))

	dec.Reset(bytes.NewReader([]byte{byte(event.EvZoneEnd), 1}))
	assert.ErrorIs(t, dec.Decode(&rec), event.ErrTruncated)
	dec.Reset(bytes.NewReader([]byte{0xee}))
	assert.ErrorIs(t, dec.Decode(&rec), event.ErrUnknownType)
	dec.Reset(io.MultiReader(bytes.NewReader([]byte{byte(event.EvFrameMarkMsg)}), errReader{}))
	assert.Error(t, dec.Decode(&rec))

	samples, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []Sample{
		{Name: "tracy_decode_errors_total", Label: "io", Value: 1},
		{Name: "tracy_decode_errors_total", Label: "truncated", Value: 1},
		{Name: "tracy_decode_errors_total", Label: "unknown_type", Value: 1},
		{Name: "tracy_record_bytes_total", Label: "Terminate", Value: 1},
		{Name: "tracy_record_bytes_total", Label: "ZoneBegin", Value: 58},
		{Name: "tracy_record_bytes_total", Label: "ZoneEnd", Value: 21},
		{Name: "tracy_records_decoded_total", Label: "Terminate", Value: 1},
		{Name: "tracy_records_decoded_total", Label: "ZoneBegin", Value: 2},
		{Name: "tracy_records_decoded_total", Label: "ZoneEnd", Value: 1},
		{Name: "tracy_streams_terminated_total", Label: "", Value: 1},
	}, samples)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
