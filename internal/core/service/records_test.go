package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/storage/archive"
	"github.com/yndnr/medrec/internal/storage/backup"
	"github.com/yndnr/medrec/internal/storage/snapshot"
	"github.com/yndnr/medrec/internal/telemetry/metric"
)

type fixture struct {
	svc      *Records
	dir      string
	target   *backup.MemoryTarget
	snapshot *snapshot.Manager
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	dir := t.TempDir()
	snaps, err := snapshot.NewManager(snapshot.DefaultConfig(dir))
	require.NoError(t, err)

	target := backup.NewMemoryTarget()
	opts = append([]Option{WithBackup(backup.NewManager(target))}, opts...)

	svc := NewRecords(snaps, opts...)
	t.Cleanup(func() { svc.Close() })
	return &fixture{svc: svc, dir: dir, target: target, snapshot: snaps}
}

func alice() domain.Patient {
	return domain.Patient{ID: 1, Name: "Alice", Age: 30, Diagnosis: "Flu", Room: 101}
}

func ids(records []domain.Patient) []int32 {
	out := make([]int32, 0, len(records))
	for _, p := range records {
		out = append(out, p.ID)
	}
	return out
}

func TestRecords_BackupRestoreScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Admit(ctx, alice()))
	err := f.svc.Admit(ctx, domain.Patient{ID: 2, Name: "Bob", Age: 150, Diagnosis: "X", Room: 102})
	require.ErrorIs(t, err, domain.ErrInvalidAge)
	assert.Equal(t, 1, f.svc.Count())

	_, err = f.svc.Backup(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Admit(ctx, domain.Patient{ID: 3, Name: "Carol", Age: 41, Diagnosis: "Cold", Room: 103}))
	assert.Equal(t, 2, f.svc.Count())

	n, err := f.svc.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int32{1}, ids(f.svc.List()))
}

func TestRecords_RestoreIncludesSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.AssignShift(ctx, 0, 0, "Dr. House"))
	_, err := f.svc.Backup(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.AssignShift(ctx, 0, 0, "Dr. Grey"))
	require.NoError(t, f.svc.AssignShift(ctx, 3, 2, "Dr. Who"))

	_, err = f.svc.Restore(ctx)
	require.NoError(t, err)

	got, _ := f.svc.Schedule().Get(0, 0)
	assert.Equal(t, "Dr. House", got)
	got, _ = f.svc.Schedule().Get(3, 2)
	assert.Empty(t, got)
}

func TestRecords_RestoreWithoutBackup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.Admit(ctx, alice()))

	_, err := f.svc.Restore(ctx)
	require.ErrorIs(t, err, domain.ErrNoBackupFound)
	assert.Equal(t, []int32{1}, ids(f.svc.List()))
}

func TestRecords_RestoreCorruptLeavesState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Admit(ctx, alice()))
	_, err := f.svc.Backup(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Admit(ctx, domain.Patient{ID: 2, Name: "Bob", Age: 50}))
	require.NoError(t, f.svc.AssignShift(ctx, 1, 1, "Dr. Grey"))

	b := f.target.Bytes()
	f.target.SetBytes(b[:len(b)-40])

	_, err = f.svc.Restore(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsIOError(err))

	assert.Equal(t, []int32{1, 2}, ids(f.svc.List()))
	got, _ := f.svc.Schedule().Get(1, 1)
	assert.Equal(t, "Dr. Grey", got)
}

func TestRecords_BackupDisabled(t *testing.T) {
	dir := t.TempDir()
	snaps, err := snapshot.NewManager(snapshot.DefaultConfig(dir))
	require.NoError(t, err)
	svc := NewRecords(snaps)

	_, err = svc.Backup(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackupDisabled)
	_, err = svc.Restore(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackupDisabled)
	_, err = svc.BackupInfo(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackupDisabled)
}

func TestRecords_SaveLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Admit(ctx, alice()))
	require.NoError(t, f.svc.Admit(ctx, domain.Patient{ID: 7, Name: "Dave", Age: 70, Diagnosis: "Gout", Room: 7}))
	require.NoError(t, f.svc.AssignShift(ctx, 6, 2, "Dr. Grey"))

	info, err := f.svc.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Records)
	assert.FileExists(t, filepath.Join(f.dir, snapshot.DefaultScheduleFile))

	other := NewRecords(f.snapshot)
	n, err := other.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, f.svc.List(), other.List())
	assert.True(t, f.svc.Schedule().Equal(other.Schedule()))
}

func TestRecords_LoadMissingFileStartsEmpty(t *testing.T) {
	f := newFixture(t)

	n, err := f.svc.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, f.svc.Schedule().Equal(domain.NewSchedule()))
}

func TestRecords_LoadCorruptIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.Admit(ctx, alice()))

	path := filepath.Join(f.dir, snapshot.DefaultPatientFile)
	require.NoError(t, os.WriteFile(path, []byte{5, 0, 0, 0, 1}, 0640))

	_, err := f.svc.Load(ctx)
	require.ErrorIs(t, err, domain.ErrTruncatedStream)
	assert.Equal(t, 1, f.svc.Count())
}

func TestRecords_FindAndDischarge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.Admit(ctx, alice()))

	p, err := f.svc.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)

	p, err = f.svc.FindByName("Alice\n")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.ID)

	_, err = f.svc.FindByName("alice")
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)

	d, err := f.svc.Discharge(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), d.Patient.ID)
	assert.Zero(t, f.svc.Count())

	_, err = f.svc.Discharge(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
	_, err = f.svc.FindByID(1)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
}

func TestRecords_DischargeArchives(t *testing.T) {
	ctx := context.Background()
	a, err := archive.Open(archive.Config{InMemory: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	f := newFixture(t, WithArchive(a))
	require.NoError(t, f.svc.Admit(ctx, alice()))
	require.NoError(t, f.svc.Admit(ctx, domain.Patient{ID: 2, Name: "Bob", Age: 20}))

	_, err = f.svc.Discharge(ctx, 2)
	require.NoError(t, err)
	_, err = f.svc.Discharge(ctx, 1)
	require.NoError(t, err)

	got, err := f.svc.Discharged(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int32(2), got[0].Patient.ID)
	assert.Equal(t, int32(1), got[1].Patient.ID)
}

type failingArchive struct{}

func (failingArchive) Record(context.Context, *domain.Discharge) error {
	return errors.New("disk full")
}
func (failingArchive) List(context.Context) ([]domain.Discharge, error) { return nil, nil }
func (failingArchive) Close() error                                     { return nil }

func TestRecords_DischargeKeepsPatientWhenArchiveFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithArchive(failingArchive{}))
	require.NoError(t, f.svc.Admit(ctx, alice()))

	_, err := f.svc.Discharge(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 1, f.svc.Count())
}

func TestRecords_DischargedWithoutArchive(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Discharged(context.Background())
	assert.ErrorIs(t, err, domain.ErrArchiveDisabled)
}

func TestRecords_AssignShiftOutOfRange(t *testing.T) {
	f := newFixture(t)
	err := f.svc.AssignShift(context.Background(), 7, 0, "Dr. Nobody")
	assert.ErrorIs(t, err, domain.ErrScheduleSlot)
}

func TestRecords_ScheduleIsCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.AssignShift(ctx, 0, 0, "A"))

	s := f.svc.Schedule()
	require.NoError(t, s.Set(0, 0, "Z"))

	got, _ := f.svc.Schedule().Get(0, 0)
	assert.Equal(t, "A", got)
}

func TestRecords_Metrics(t *testing.T) {
	ctx := context.Background()
	m := metric.NewRegistry()
	f := newFixture(t, WithMetrics(m))

	require.NoError(t, f.svc.Admit(ctx, alice()))
	assert.ErrorIs(t, f.svc.Admit(ctx, alice()), domain.ErrDuplicateID)
	assert.ErrorIs(t, f.svc.Admit(ctx, domain.Patient{ID: 9, Age: 0}), domain.ErrInvalidAge)
	_, err := f.svc.Save(ctx)
	require.NoError(t, err)
	_, err = f.svc.Restore(ctx)
	require.Error(t, err)

	assert.Same(t, m, f.svc.Metrics())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Admissions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdmissionRejections.WithLabelValues(metric.ReasonDuplicateID)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdmissionRejections.WithLabelValues(metric.ReasonInvalidAge)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PatientsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotOperations.WithLabelValues(metric.OpSave, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotOperations.WithLabelValues(metric.OpRestore, "error")))
	assert.Greater(t, testutil.ToFloat64(m.SnapshotBytes.WithLabelValues("primary")), 0.0)
}
