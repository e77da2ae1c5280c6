package backup

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/storage/snapshot"
)

// DefaultFileName is the backup file name used when only a directory is set.
const DefaultFileName = "backup.dat"

// FileTarget stores the backup in a local file.
type FileTarget struct {
	path string
}

// NewFileTarget returns a target writing to path. The parent directory is
// created on first Put.
func NewFileTarget(path string) *FileTarget {
	return &FileTarget{path: path}
}

func (t *FileTarget) Driver() Driver { return DriverFile }

// Path returns the backup file path.
func (t *FileTarget) Path() string { return t.path }

func (t *FileTarget) Put(_ context.Context, r io.Reader, _ int64) (Info, error) {
	if err := os.MkdirAll(filepath.Dir(t.path), 0750); err != nil {
		return Info{}, domain.ErrUnwritable.WithDetails(t.path).WithCause(err)
	}
	err := snapshot.WriteFileAtomic(t.path, func(w io.Writer) error {
		if _, err := io.Copy(w, r); err != nil {
			return domain.ErrUnwritable.WithDetails(t.path).WithCause(err)
		}
		return nil
	})
	if err != nil {
		return Info{}, err
	}
	return t.Stat(context.Background())
}

func (t *FileTarget) Get(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNoBackupFound.WithDetails(t.path)
		}
		return nil, domain.ErrUnreadable.WithDetails(t.path).WithCause(err)
	}
	return f, nil
}

func (t *FileTarget) Stat(_ context.Context) (Info, error) {
	st, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, domain.ErrNoBackupFound.WithDetails(t.path)
		}
		return Info{}, domain.ErrUnreadable.WithDetails(t.path).WithCause(err)
	}
	return Info{Location: t.path, Size: st.Size(), LastModified: st.ModTime()}, nil
}
