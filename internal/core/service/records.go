package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/storage/backup"
	"github.com/yndnr/medrec/internal/storage/memory"
	"github.com/yndnr/medrec/internal/storage/snapshot"
	"github.com/yndnr/medrec/internal/telemetry/logger"
	"github.com/yndnr/medrec/internal/telemetry/metric"
)

// SnapshotStore persists the primary patient file and the schedule file.
type SnapshotStore interface {
	Save(records []domain.Patient) (*snapshot.Info, error)
	Load() ([]domain.Patient, *snapshot.Info, error)
	SaveSchedule(s *domain.Schedule) error
	LoadSchedule() (*domain.Schedule, error)
}

// BackupStore writes and reads the secondary copy.
type BackupStore interface {
	Backup(ctx context.Context, records []domain.Patient, schedule *domain.Schedule) (backup.Info, error)
	Restore(ctx context.Context) (*backup.Result, error)
	Stat(ctx context.Context) (backup.Info, error)
}

// DischargeArchive keeps discharged records.
type DischargeArchive interface {
	Record(ctx context.Context, d *domain.Discharge) error
	List(ctx context.Context) ([]domain.Discharge, error)
	Close() error
}

// Records owns the patient store and the shift schedule and serializes
// every operation on them.
type Records struct {
	mu sync.Mutex

	store    *memory.Store
	schedule *domain.Schedule

	snapshots SnapshotStore
	backups   BackupStore
	archive   DischargeArchive

	metrics *metric.Registry
	logger  logger.Logger
}

// Option configures Records.
type Option func(*Records)

// WithBackup sets the backup store.
func WithBackup(b BackupStore) Option {
	return func(r *Records) {
		r.backups = b
	}
}

// WithArchive sets the discharge archive.
func WithArchive(a DischargeArchive) Option {
	return func(r *Records) {
		r.archive = a
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(r *Records) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Records) {
		r.logger = l
	}
}

// WithStore replaces the empty default store.
func WithStore(s *memory.Store) Option {
	return func(r *Records) {
		r.store = s
	}
}

// NewRecords creates the service around the given primary file store.
func NewRecords(snapshots SnapshotStore, opts ...Option) *Records {
	r := &Records{
		store:     memory.New(),
		schedule:  domain.NewSchedule(),
		snapshots: snapshots,
		metrics:   metric.NewRegistry(),
		logger:    logger.Discard(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.metrics.SetPatientsActive(r.store.Count())
	return r
}

// Metrics returns the registry the service reports to.
func (r *Records) Metrics() *metric.Registry {
	return r.metrics
}

// ============================================================================
// Patient Operations
// ============================================================================

// Admit inserts p. Duplicate ids and out-of-range ages are rejected and
// leave the store unchanged.
func (r *Records) Admit(ctx context.Context, p domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logger.WithContext(ctx)

	if err := r.store.Insert(p); err != nil {
		r.metrics.IncRejection(rejectionReason(err))
		log.Info("admission rejected",
			"patient_id", p.ID,
			"code", domain.GetErrorCode(err),
		)
		return err
	}

	r.metrics.IncAdmission()
	r.metrics.SetPatientsActive(r.store.Count())
	log.Info("patient admitted",
		"patient_id", p.ID,
		"patient_name", p.Name,
		"room", p.Room,
	)
	return nil
}

// FindByID returns the active record with id.
func (r *Records) FindByID(id int32) (domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store.FindByID(id)
	if !ok {
		return domain.Patient{}, domain.ErrPatientNotFound.WithDetails("id " + strconv.Itoa(int(id)))
	}
	return p, nil
}

// FindByName returns the first record in admission order whose name
// equals name exactly.
func (r *Records) FindByName(name string) (domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store.FindByName(name)
	if !ok {
		return domain.Patient{}, domain.ErrPatientNotFound.WithDetails("name")
	}
	return p, nil
}

// Discharge removes the record with id. When an archive is configured the
// record is archived first and stays admitted if archiving fails.
func (r *Records) Discharge(ctx context.Context, id int32) (*domain.Discharge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logger.WithContext(ctx)

	p, ok := r.store.FindByID(id)
	if !ok {
		return nil, domain.ErrPatientNotFound.WithDetails("id " + strconv.Itoa(int(id)))
	}

	d, err := domain.NewDischarge(p)
	if err != nil {
		return nil, fmt.Errorf("discharge: %w", err)
	}

	if r.archive != nil {
		if err := r.archive.Record(ctx, d); err != nil {
			log.Error("archive discharge failed",
				"patient_id", id,
				"error", err,
			)
			return nil, err
		}
	}

	if _, err := r.store.Delete(id); err != nil {
		return nil, err
	}

	r.metrics.IncDischarge()
	r.metrics.SetPatientsActive(r.store.Count())
	log.Info("patient discharged",
		"patient_id", id,
		"archived", r.archive != nil,
	)
	return d, nil
}

// List returns a copy of the active records in admission order.
func (r *Records) List() []domain.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.All()
}

// Count returns the number of active records.
func (r *Records) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Count()
}

// ============================================================================
// Schedule Operations
// ============================================================================

// AssignShift sets the doctor for a slot. An empty name clears it.
func (r *Records) AssignShift(ctx context.Context, day, shift int, doctor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.schedule.Set(day, shift, doctor); err != nil {
		return err
	}
	r.logger.WithContext(ctx).Info("shift assigned",
		"day", domain.DayName(day),
		"shift", domain.ShiftName(shift),
		"doctor", doctor,
	)
	return nil
}

// Schedule returns a copy of the schedule.
func (r *Records) Schedule() *domain.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedule.Clone()
}

// ============================================================================
// Persistence Operations
// ============================================================================

// Save writes the primary file and the schedule file.
func (r *Records) Save(ctx context.Context) (*snapshot.Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	info, err := r.save()
	r.metrics.ObserveSnapshot(metric.OpSave, start, err)
	if err != nil {
		r.logger.WithContext(ctx).Error("save failed", "error", err)
		return nil, err
	}

	r.metrics.SetSnapshotBytes("primary", info.Size)
	r.logger.WithContext(ctx).Info("records saved",
		"path", info.Path,
		"records", info.Records,
		"bytes", info.Size,
	)
	return info, nil
}

func (r *Records) save() (*snapshot.Info, error) {
	info, err := r.snapshots.Save(r.store.All())
	if err != nil {
		return nil, err
	}
	if err := r.snapshots.SaveSchedule(r.schedule); err != nil {
		return nil, err
	}
	return info, nil
}

// Load replaces the store with the primary file and the schedule with the
// schedule file. A missing file leaves the matching state empty and is not
// an error. Every other failure leaves both untouched.
func (r *Records) Load(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logger.WithContext(ctx)
	start := time.Now()

	records, _, err := r.snapshots.Load()
	if err != nil && !errors.Is(err, domain.ErrNotPresent) {
		r.metrics.ObserveSnapshot(metric.OpLoad, start, err)
		return 0, err
	}
	if err != nil {
		log.Info("no primary file, starting empty")
	}

	schedule, serr := r.snapshots.LoadSchedule()
	if serr != nil && !errors.Is(serr, domain.ErrNotPresent) {
		r.metrics.ObserveSnapshot(metric.OpLoad, start, serr)
		return 0, serr
	}

	dropped := r.store.Replace(records)
	if dropped > 0 {
		log.Warn("duplicate ids dropped on load", "dropped", dropped)
	}
	r.schedule.ReplaceFrom(schedule)

	r.metrics.ObserveSnapshot(metric.OpLoad, start, nil)
	r.metrics.SetPatientsActive(r.store.Count())
	log.Debug("records loaded", "records", r.store.Count())
	return r.store.Count(), nil
}

// Backup overwrites the backup with the records and the schedule.
func (r *Records) Backup(ctx context.Context) (backup.Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backups == nil {
		return backup.Info{}, domain.ErrBackupDisabled
	}

	start := time.Now()
	info, err := r.backups.Backup(ctx, r.store.All(), r.schedule)
	r.metrics.ObserveSnapshot(metric.OpBackup, start, err)
	if err != nil {
		r.logger.WithContext(ctx).Error("backup failed", "error", err)
		return backup.Info{}, err
	}

	r.metrics.SetSnapshotBytes("backup", info.Size)
	r.logger.WithContext(ctx).Info("backup written",
		"location", info.Location,
		"records", info.Records,
		"bytes", info.Size,
	)
	return info, nil
}

// Restore replaces the records and the schedule with the backup. The
// backup is decoded completely before anything is replaced, so a failed
// restore leaves both untouched.
func (r *Records) Restore(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backups == nil {
		return 0, domain.ErrBackupDisabled
	}

	start := time.Now()
	res, err := r.backups.Restore(ctx)
	r.metrics.ObserveSnapshot(metric.OpRestore, start, err)
	if err != nil {
		r.logger.WithContext(ctx).Warn("restore failed", "error", err)
		return 0, err
	}

	dropped := r.store.Replace(res.Records)
	r.schedule.ReplaceFrom(res.Schedule)

	r.metrics.SetPatientsActive(r.store.Count())
	r.logger.WithContext(ctx).Info("backup restored",
		"records", r.store.Count(),
		"dropped", dropped,
		"format_version", res.Version,
	)
	return r.store.Count(), nil
}

// BackupInfo describes the current backup.
func (r *Records) BackupInfo(ctx context.Context) (backup.Info, error) {
	if r.backups == nil {
		return backup.Info{}, domain.ErrBackupDisabled
	}
	return r.backups.Stat(ctx)
}

// Close releases the archive.
func (r *Records) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.archive == nil {
		return nil
	}
	return r.archive.Close()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateID):
		return metric.ReasonDuplicateID
	case errors.Is(err, domain.ErrInvalidAge):
		return metric.ReasonInvalidAge
	default:
		return metric.ReasonOther
	}
}
