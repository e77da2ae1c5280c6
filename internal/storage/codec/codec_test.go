package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/medrec/internal/core/domain"
)

func sampleRecords() []domain.Patient {
	return []domain.Patient{
		{ID: 1, Name: "Alice", Age: 30, Diagnosis: "Flu", Room: 101},
		{ID: 2, Name: strings.Repeat("N", NameWidth), Age: 125, Diagnosis: strings.Repeat("D", DiagnosisWidth), Room: -4},
		{ID: -7, Name: "", Age: 140, Diagnosis: "", Room: 0},
	}
}

func sampleSchedule(t *testing.T) *domain.Schedule {
	t.Helper()
	s := domain.NewSchedule()
	require.NoError(t, s.Set(0, 0, "Dr. House"))
	require.NoError(t, s.Set(6, 2, strings.Repeat("x", NameWidth)))
	return s
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		schedule bool
	}{
		{"versioned", Options{}, false},
		{"versioned with schedule", Options{}, true},
		{"legacy", Options{Legacy: true}, false},
		{"legacy with schedule", Options{Legacy: true, LegacySchedule: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sched *domain.Schedule
			if tt.schedule {
				sched = sampleSchedule(t)
			}

			var buf bytes.Buffer
			n, err := Encode(&buf, sampleRecords(), sched, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)
			assert.Equal(t, Size(3, tt.schedule, tt.opts), n)

			snap, err := Decode(&buf, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, sampleRecords(), snap.Records)

			if tt.schedule {
				require.NotNil(t, snap.Schedule)
				assert.True(t, sched.Equal(snap.Schedule))
			} else {
				assert.Nil(t, snap.Schedule)
			}
			if tt.opts.Legacy {
				assert.Zero(t, snap.Version)
			} else {
				assert.Equal(t, Version, snap.Version)
			}
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, nil, nil, Options{Legacy: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())

	snap, err := Decode(&buf, Options{})
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
}

func TestEncode_LegacyLayout(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, []domain.Patient{{ID: 1, Name: "Al", Age: 30, Diagnosis: "Flu", Room: 101}}, nil, Options{Legacy: true})
	require.NoError(t, err)

	b := buf.Bytes()
	require.Len(t, b, intSize+RecordSize)
	assert.Equal(t, []byte{1, 0, 0, 0}, b[0:4], "count")
	assert.Equal(t, []byte{1, 0, 0, 0}, b[4:8], "id")
	assert.Equal(t, []byte("Al"), b[8:10])
	assert.Equal(t, make([]byte, NameWidth-2), b[10:8+NameWidth], "name padding")
	assert.Equal(t, []byte{30, 0, 0, 0}, b[8+NameWidth:12+NameWidth], "age")
	assert.Equal(t, []byte{101, 0, 0, 0}, b[len(b)-4:], "room")
}

func TestEncode_TruncatesOversizedText(t *testing.T) {
	long := domain.Patient{ID: 1, Name: strings.Repeat("a", NameWidth+5), Age: 3, Diagnosis: strings.Repeat("é", DiagnosisWidth)}

	var buf bytes.Buffer
	_, err := Encode(&buf, []domain.Patient{long}, nil, Options{})
	require.NoError(t, err)

	snap, err := Decode(&buf, Options{})
	require.NoError(t, err)
	got := snap.Records[0]
	assert.Equal(t, strings.Repeat("a", NameWidth), got.Name)
	assert.Equal(t, strings.Repeat("é", DiagnosisWidth/2), got.Diagnosis)
}

func TestDecode_Truncated(t *testing.T) {
	for _, opts := range []Options{{}, {Legacy: true}} {
		var buf bytes.Buffer
		_, err := Encode(&buf, sampleRecords(), nil, opts)
		require.NoError(t, err)
		full := buf.Bytes()

		for _, cut := range []int{0, 2, len(full) - RecordSize, len(full) - 1} {
			_, err := Decode(bytes.NewReader(full[:cut]), opts)
			assert.ErrorIs(t, err, domain.ErrTruncatedStream, "legacy=%v cut=%d", opts.Legacy, cut)
		}
	}
}

func TestDecode_CountLargerThanData(t *testing.T) {
	data := []byte{5, 0, 0, 0}
	data = append(data, make([]byte, RecordSize*2)...)

	_, err := Decode(bytes.NewReader(data), Options{})
	require.ErrorIs(t, err, domain.ErrTruncatedStream)
	assert.Contains(t, err.Error(), "record 3 of 5")
}

func TestDecode_LegacyMissingSchedule(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, sampleRecords(), nil, Options{Legacy: true})
	require.NoError(t, err)

	_, err = Decode(&buf, Options{LegacySchedule: true})
	assert.ErrorIs(t, err, domain.ErrTruncatedStream)
}

func TestDecode_NegativeCount(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}), Options{})
	assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, sampleRecords(), nil, Options{})
	require.NoError(t, err)

	data := buf.Bytes()
	data[headerSize+intSize+5] ^= 0xff

	_, err = Decode(bytes.NewReader(data), Options{})
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)
}

func TestDecode_HeaderMismatch(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, nil, nil, Options{})
	require.NoError(t, err)
	good := buf.Bytes()

	tests := []struct {
		name   string
		offset int
		value  byte
	}{
		{"version", 4, 9},
		{"name width", 6, 50},
		{"diagnosis width", 8, 50},
		{"flags", 10, 0x80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Clone(good)
			data[tt.offset] = tt.value
			_, err := Decode(bytes.NewReader(data), Options{})
			assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestDecode_ReadError(t *testing.T) {
	_, err := Decode(failingReader{}, Options{})
	require.ErrorIs(t, err, domain.ErrUnreadable)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestEncode_WriteError(t *testing.T) {
	_, err := Encode(failingWriter{}, sampleRecords(), nil, Options{})
	assert.ErrorIs(t, err, domain.ErrUnwritable)
}

func TestScheduleFile(t *testing.T) {
	sched := sampleSchedule(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeSchedule(&buf, sched))
	assert.Equal(t, ScheduleSize, buf.Len())

	got, err := DecodeSchedule(&buf)
	require.NoError(t, err)
	assert.True(t, sched.Equal(got))

	_, err = DecodeSchedule(bytes.NewReader(make([]byte, ScheduleSize-1)))
	assert.ErrorIs(t, err, domain.ErrTruncatedStream)
}
