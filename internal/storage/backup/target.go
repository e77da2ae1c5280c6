package backup

import (
	"context"
	"io"
	"time"
)

// Driver identifies a backup location implementation.
type Driver string

const (
	// DriverFile stores the backup in a local file (default).
	DriverFile Driver = "file"
	// DriverS3 stores the backup as an S3 / MinIO object.
	DriverS3 Driver = "s3"
	// DriverMemory keeps the backup in process memory (tests).
	DriverMemory Driver = "memory"
)

// Info describes a stored backup.
type Info struct {
	Location     string    `json:"location" yaml:"location"`
	Size         int64     `json:"size_bytes" yaml:"size_bytes"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	Records      int       `json:"records,omitempty" yaml:"records,omitempty"`
}

// Target is a single backup location.
//
// Get and Stat return domain.ErrNoBackupFound when nothing was stored yet.
type Target interface {
	Put(ctx context.Context, r io.Reader, size int64) (Info, error)
	Get(ctx context.Context) (io.ReadCloser, error)
	Stat(ctx context.Context) (Info, error)
	Driver() Driver
}
