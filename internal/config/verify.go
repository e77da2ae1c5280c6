package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/yndnr/medrec/internal/storage/backup"
	"github.com/yndnr/medrec/internal/telemetry/logger"
	"github.com/yndnr/medrec/pkg/crypto/adaptive"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyBackup(&cfg.Backup); err != nil {
		return err
	}
	if err := verifySecurity(cfg); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if cfg.PatientFile == "" {
		return errors.New("storage.patient_file is required")
	}
	if cfg.ScheduleFile == "" {
		return errors.New("storage.schedule_file is required")
	}
	if filepath.Clean(cfg.PatientFile) == filepath.Clean(cfg.ScheduleFile) {
		return errors.New("storage.patient_file and storage.schedule_file must differ")
	}
	return nil
}

func verifyBackup(cfg *BackupSection) error {
	switch backup.Driver(cfg.Driver) {
	case backup.DriverFile:
		if cfg.Path == "" {
			return errors.New("backup.path is required for the file driver")
		}
	case backup.DriverS3:
		if cfg.S3.Bucket == "" {
			return errors.New("backup.s3.bucket is required for the s3 driver")
		}
		if cfg.S3.Key == "" {
			return errors.New("backup.s3.key is required for the s3 driver")
		}
		if (cfg.S3.AccessKeyID == "") != (cfg.S3.SecretAccessKey == "") {
			return errors.New("backup.s3.access_key_id and backup.s3.secret_access_key must be set together")
		}
	case backup.DriverMemory:
	default:
		return fmt.Errorf("backup.driver %q is not one of file, s3, memory", cfg.Driver)
	}
	return nil
}

func verifySecurity(cfg *Config) error {
	if cfg.Security.EncryptionKey == "" {
		return nil
	}
	if cfg.Storage.ArchiveDir == "" {
		return errors.New("security.encryption_key requires storage.archive_dir")
	}
	if _, err := adaptive.ParseSecret(cfg.Security.EncryptionKey); err != nil {
		return fmt.Errorf("security.encryption_key: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", cfg.Format)
	}
	return nil
}
