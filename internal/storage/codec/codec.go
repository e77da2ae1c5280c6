package codec

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/yndnr/medrec/internal/core/domain"
)

// Magic identifies the versioned layout.
var Magic = []byte("MDRC")

const (
	// Version is the layout version written by Encode.
	Version uint16 = 1

	// NameWidth and DiagnosisWidth are the on-disk text field widths.
	NameWidth      = domain.NameMaxLength
	DiagnosisWidth = domain.DiagnosisMaxLength

	// FlagSchedule marks a schedule block after the records.
	FlagSchedule uint16 = 1 << 0

	headerSize   = 12
	intSize      = 4
	checksumSize = sha256.Size

	// RecordSize is the size of one record block.
	RecordSize = intSize + NameWidth + intSize + DiagnosisWidth + intSize

	// ScheduleSize is the size of the schedule block.
	ScheduleSize = domain.SlotCount * NameWidth

	// maxPrealloc bounds the slice capacity taken from an untrusted count.
	maxPrealloc = 4096
)

var order = binary.LittleEndian

// Options controls the layout.
type Options struct {
	// Legacy selects the headerless layout without checksum.
	Legacy bool

	// LegacySchedule tells Decode that a legacy stream carries a schedule
	// block. Versioned streams record this in their header.
	LegacySchedule bool
}

// Snapshot is the decoded content of a record file.
type Snapshot struct {
	// Version is 0 for the legacy layout.
	Version uint16

	Records []domain.Patient

	// Schedule is nil when the stream had no schedule block.
	Schedule *domain.Schedule
}

// Size returns the encoded size of n records.
func Size(n int, withSchedule bool, opts Options) int64 {
	size := int64(intSize) + int64(n)*RecordSize
	if withSchedule {
		size += ScheduleSize
	}
	if !opts.Legacy {
		size += headerSize + checksumSize
	}
	return size
}

// Encode writes records, and schedule when non-nil, to w.
// It returns the number of bytes written.
func Encode(w io.Writer, records []domain.Patient, schedule *domain.Schedule, opts Options) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	var out io.Writer = bw
	var h hash.Hash
	if !opts.Legacy {
		h = sha256.New()
		out = io.MultiWriter(bw, h)

		var flags uint16
		if schedule != nil {
			flags |= FlagSchedule
		}
		var hdr [headerSize]byte
		copy(hdr[:4], Magic)
		order.PutUint16(hdr[4:], Version)
		order.PutUint16(hdr[6:], NameWidth)
		order.PutUint16(hdr[8:], DiagnosisWidth)
		order.PutUint16(hdr[10:], flags)
		if _, err := out.Write(hdr[:]); err != nil {
			return cw.n, unwritable(err)
		}
	}

	var count [intSize]byte
	order.PutUint32(count[:], uint32(len(records)))
	if _, err := out.Write(count[:]); err != nil {
		return cw.n, unwritable(err)
	}

	var block [RecordSize]byte
	for _, p := range records {
		putRecord(block[:], p)
		if _, err := out.Write(block[:]); err != nil {
			return cw.n, unwritable(err)
		}
	}

	if schedule != nil {
		if err := writeSchedule(out, schedule); err != nil {
			return cw.n, err
		}
	}

	if h != nil {
		if _, err := bw.Write(h.Sum(nil)); err != nil {
			return cw.n, unwritable(err)
		}
	}

	if err := bw.Flush(); err != nil {
		return cw.n, unwritable(err)
	}
	return cw.n, nil
}

// Decode reads a record file from r. Records are returned as stored;
// no validation rule is applied.
func Decode(r io.Reader, opts Options) (*Snapshot, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(len(Magic))
	if err == nil && bytes.Equal(head, Magic) {
		return decodeVersioned(br)
	}
	return decodeLegacy(br, opts.LegacySchedule)
}

func decodeLegacy(r io.Reader, withSchedule bool) (*Snapshot, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Records: records}
	if withSchedule {
		if snap.Schedule, err = readSchedule(r); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func decodeVersioned(r io.Reader) (*Snapshot, error) {
	h := sha256.New()
	tr := io.TeeReader(r, h)

	var hdr [headerSize]byte
	if err := readFull(tr, hdr[:], "header"); err != nil {
		return nil, err
	}

	version := order.Uint16(hdr[4:])
	nameW := order.Uint16(hdr[6:])
	diagW := order.Uint16(hdr[8:])
	flags := order.Uint16(hdr[10:])

	if version != Version {
		return nil, domain.ErrCorruptSnapshot.WithDetails(fmt.Sprintf("unsupported version %d", version))
	}
	if nameW != NameWidth || diagW != DiagnosisWidth {
		return nil, domain.ErrCorruptSnapshot.WithDetails(
			fmt.Sprintf("field widths %d/%d, want %d/%d", nameW, diagW, NameWidth, DiagnosisWidth))
	}
	if flags&^FlagSchedule != 0 {
		return nil, domain.ErrCorruptSnapshot.WithDetails(fmt.Sprintf("unknown flags %#x", flags))
	}

	records, err := readRecords(tr)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Version: version, Records: records}
	if flags&FlagSchedule != 0 {
		if snap.Schedule, err = readSchedule(tr); err != nil {
			return nil, err
		}
	}

	// Trailer is read past the tee so it is not hashed.
	want := make([]byte, checksumSize)
	if err := readFull(r, want, "checksum"); err != nil {
		return nil, err
	}
	if !bytes.Equal(h.Sum(nil), want) {
		return nil, domain.ErrChecksumMismatch
	}
	return snap, nil
}

func readRecords(r io.Reader) ([]domain.Patient, error) {
	var buf [intSize]byte
	if err := readFull(r, buf[:], "count"); err != nil {
		return nil, err
	}
	count := int32(order.Uint32(buf[:]))
	if count < 0 {
		return nil, domain.ErrCorruptSnapshot.WithDetails(fmt.Sprintf("negative count %d", count))
	}

	records := make([]domain.Patient, 0, min(int(count), maxPrealloc))
	var block [RecordSize]byte
	for i := int32(0); i < count; i++ {
		if err := readFull(r, block[:], fmt.Sprintf("record %d of %d", i+1, count)); err != nil {
			return nil, err
		}
		records = append(records, getRecord(block[:]))
	}
	return records, nil
}

// EncodeSchedule writes only the schedule block, the layout of the
// schedule file kept next to the primary file.
func EncodeSchedule(w io.Writer, schedule *domain.Schedule) error {
	bw := bufio.NewWriter(w)
	if err := writeSchedule(bw, schedule); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return unwritable(err)
	}
	return nil
}

// DecodeSchedule reads a schedule block written by EncodeSchedule.
func DecodeSchedule(r io.Reader) (*domain.Schedule, error) {
	return readSchedule(r)
}

func writeSchedule(w io.Writer, schedule *domain.Schedule) error {
	var block [ScheduleSize]byte
	for i, name := range schedule.Names() {
		putString(block[i*NameWidth:(i+1)*NameWidth], name)
	}
	if _, err := w.Write(block[:]); err != nil {
		return unwritable(err)
	}
	return nil
}

func readSchedule(r io.Reader) (*domain.Schedule, error) {
	var block [ScheduleSize]byte
	if err := readFull(r, block[:], "schedule"); err != nil {
		return nil, err
	}

	names := make([]string, domain.SlotCount)
	for i := range names {
		names[i] = getString(block[i*NameWidth : (i+1)*NameWidth])
	}
	s := domain.NewSchedule()
	s.SetNames(names)
	return s, nil
}

func putRecord(b []byte, p domain.Patient) {
	off := 0
	order.PutUint32(b[off:], uint32(p.ID))
	off += intSize
	putString(b[off:off+NameWidth], p.Name)
	off += NameWidth
	order.PutUint32(b[off:], uint32(p.Age))
	off += intSize
	putString(b[off:off+DiagnosisWidth], p.Diagnosis)
	off += DiagnosisWidth
	order.PutUint32(b[off:], uint32(p.Room))
}

func getRecord(b []byte) domain.Patient {
	var p domain.Patient
	off := 0
	p.ID = int32(order.Uint32(b[off:]))
	off += intSize
	p.Name = getString(b[off : off+NameWidth])
	off += NameWidth
	p.Age = int32(order.Uint32(b[off:]))
	off += intSize
	p.Diagnosis = getString(b[off : off+DiagnosisWidth])
	off += DiagnosisWidth
	p.Room = int32(order.Uint32(b[off:]))
	return p
}

// putString null-pads s into b, truncating on a rune boundary.
func putString(b []byte, s string) {
	n := copy(b, domain.Truncate(s, len(b)))
	clear(b[n:])
}

// getString returns the bytes of b up to the first NUL.
func getString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func readFull(r io.Reader, b []byte, what string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return domain.ErrTruncatedStream.WithDetails(what)
		}
		return domain.ErrUnreadable.WithDetails(what).WithCause(err)
	}
	return nil
}

func unwritable(err error) error {
	return domain.ErrUnwritable.WithCause(err)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
