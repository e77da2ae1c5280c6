package backup

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/storage/codec"
)

// Manager writes and restores backups against one Target.
type Manager struct {
	target Target
	legacy bool
}

// Option configures the Manager.
type Option func(*Manager)

// WithLegacyFormat writes the headerless layout.
func WithLegacyFormat(legacy bool) Option {
	return func(m *Manager) {
		m.legacy = legacy
	}
}

// NewManager creates a manager for target.
func NewManager(target Target, opts ...Option) *Manager {
	m := &Manager{target: target}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Target returns the backup location.
func (m *Manager) Target() Target {
	return m.target
}

// Result is a fully decoded backup.
type Result struct {
	Records  []domain.Patient
	Schedule *domain.Schedule
	Version  uint16
}

// Backup overwrites the stored backup with records and schedule.
// A nil schedule is written as an empty grid.
func (m *Manager) Backup(ctx context.Context, records []domain.Patient, schedule *domain.Schedule) (Info, error) {
	if schedule == nil {
		schedule = domain.NewSchedule()
	}

	var buf bytes.Buffer
	buf.Grow(int(codec.Size(len(records), true, codec.Options{Legacy: m.legacy})))
	if _, err := codec.Encode(&buf, records, schedule, codec.Options{Legacy: m.legacy}); err != nil {
		return Info{}, fmt.Errorf("backup: encode: %w", err)
	}

	size := int64(buf.Len())
	info, err := m.target.Put(ctx, bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		return Info{}, fmt.Errorf("backup: write: %w", err)
	}
	info.Records = len(records)
	return info, nil
}

// Restore reads and decodes the stored backup. Nothing is returned unless
// the whole stream decoded, so callers can swap the result in at once.
func (m *Manager) Restore(ctx context.Context) (*Result, error) {
	rc, err := m.target.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: read: %w", err)
	}
	defer rc.Close()

	snap, err := codec.Decode(rc, codec.Options{LegacySchedule: true})
	if err != nil {
		return nil, fmt.Errorf("backup: decode: %w", err)
	}

	schedule := snap.Schedule
	if schedule == nil {
		schedule = domain.NewSchedule()
	}
	return &Result{Records: snap.Records, Schedule: schedule, Version: snap.Version}, nil
}

// Stat describes the stored backup.
func (m *Manager) Stat(ctx context.Context) (Info, error) {
	info, err := m.target.Stat(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("backup: stat: %w", err)
	}
	return info, nil
}
