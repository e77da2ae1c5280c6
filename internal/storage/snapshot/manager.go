package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/storage/codec"
)

const (
	DefaultPatientFile  = "patients.dat"
	DefaultScheduleFile = "schedule.dat"

	tempSuffix = ".tmp"
)

// Config configures the snapshot manager.
type Config struct {
	Dir string

	// PatientFile and ScheduleFile are names inside Dir.
	PatientFile  string
	ScheduleFile string

	// Legacy writes the headerless layout. Both layouts are always readable.
	Legacy bool
}

// DefaultConfig returns a config with default file names in dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:          dir,
		PatientFile:  DefaultPatientFile,
		ScheduleFile: DefaultScheduleFile,
	}
}

// Manager reads and writes the primary files.
type Manager struct {
	cfg Config
}

// NewManager creates the data directory if needed.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, domain.ErrUnwritable.WithDetails("create data dir").WithCause(err)
	}
	if cfg.PatientFile == "" {
		cfg.PatientFile = DefaultPatientFile
	}
	if cfg.ScheduleFile == "" {
		cfg.ScheduleFile = DefaultScheduleFile
	}

	return &Manager{cfg: cfg}, nil
}

// Info describes a record file.
type Info struct {
	Path    string    `json:"path" yaml:"path"`
	Records int       `json:"records" yaml:"records"`
	Size    int64     `json:"size" yaml:"size"`
	Version uint16    `json:"version" yaml:"version"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// PatientPath returns the primary file path.
func (m *Manager) PatientPath() string {
	return m.resolve(m.cfg.PatientFile)
}

// SchedulePath returns the schedule file path.
func (m *Manager) SchedulePath() string {
	return m.resolve(m.cfg.ScheduleFile)
}

// resolve places relative names inside Dir.
func (m *Manager) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.cfg.Dir, name)
}

// Save rewrites the primary file with records.
func (m *Manager) Save(records []domain.Patient) (*Info, error) {
	path := m.PatientPath()
	var size int64
	err := WriteFileAtomic(path, func(w io.Writer) error {
		n, err := codec.Encode(w, records, nil, codec.Options{Legacy: m.cfg.Legacy})
		size = n
		return err
	})
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:    path,
		Records: len(records),
		Size:    size,
		ModTime: time.Now(),
	}
	if !m.cfg.Legacy {
		info.Version = codec.Version
	}
	return info, nil
}

// Load reads the primary file. An absent file yields domain.ErrNotPresent.
func (m *Manager) Load() ([]domain.Patient, *Info, error) {
	path := m.PatientPath()
	f, err := openRead(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	snap, err := codec.Decode(f, codec.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: load %s: %w", path, err)
	}

	info := &Info{Path: path, Records: len(snap.Records), Version: snap.Version}
	if st, err := f.Stat(); err == nil {
		info.Size = st.Size()
		info.ModTime = st.ModTime()
	}
	return snap.Records, info, nil
}

// SaveSchedule rewrites the schedule file.
func (m *Manager) SaveSchedule(s *domain.Schedule) error {
	return WriteFileAtomic(m.SchedulePath(), func(w io.Writer) error {
		return codec.EncodeSchedule(w, s)
	})
}

// LoadSchedule reads the schedule file. An absent file yields
// domain.ErrNotPresent.
func (m *Manager) LoadSchedule() (*domain.Schedule, error) {
	path := m.SchedulePath()
	f, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := codec.DecodeSchedule(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load %s: %w", path, err)
	}
	return s, nil
}

// Stat describes the primary file without decoding the records.
func (m *Manager) Stat() (*Info, error) {
	path := m.PatientPath()
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotPresent.WithDetails(path)
		}
		return nil, domain.ErrUnreadable.WithDetails(path).WithCause(err)
	}
	return &Info{Path: path, Size: st.Size(), ModTime: st.ModTime()}, nil
}

func openRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotPresent.WithDetails(path)
		}
		return nil, domain.ErrUnreadable.WithDetails(path).WithCause(err)
	}
	return f, nil
}

// WriteFileAtomic writes to a temp file next to path, syncs it and renames
// it over path.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	tempPath := path + tempSuffix
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return domain.ErrUnwritable.WithDetails(tempPath).WithCause(err)
	}
	defer os.Remove(tempPath)

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return domain.ErrUnwritable.WithDetails("sync").WithCause(err)
	}
	if err := file.Close(); err != nil {
		return domain.ErrUnwritable.WithDetails("close").WithCause(err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return domain.ErrUnwritable.WithDetails("rename").WithCause(err)
	}
	return nil
}
