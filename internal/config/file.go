package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/medrec/internal/storage/snapshot"
)

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".medrec", "medrec.yaml")
}

// Save writes cfg as YAML to path with owner-only permissions.
// An existing file is replaced atomically.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := snapshot.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	}); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}

// PatientPath returns the patient file path under the data dir.
func (c *Config) PatientPath() string {
	return joinData(c.Storage.DataDir, c.Storage.PatientFile)
}

// SchedulePath returns the schedule file path under the data dir.
func (c *Config) SchedulePath() string {
	return joinData(c.Storage.DataDir, c.Storage.ScheduleFile)
}

// BackupPath returns the file-driver backup path under the data dir.
func (c *Config) BackupPath() string {
	return joinData(c.Storage.DataDir, c.Backup.Path)
}

func joinData(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
