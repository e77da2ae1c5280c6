package config

// Default configuration values.
const (
	DefaultDataDir      = "."
	DefaultPatientFile  = "patients.dat"
	DefaultScheduleFile = "schedule.dat"

	DefaultBackupDriver = "file"
	DefaultBackupPath   = "backup.dat"
	DefaultS3Key        = "medrec/backup.dat"
	DefaultS3Region     = "us-east-1"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageSection{
			DataDir:      DefaultDataDir,
			PatientFile:  DefaultPatientFile,
			ScheduleFile: DefaultScheduleFile,
		},
		Backup: BackupSection{
			Driver: DefaultBackupDriver,
			Path:   DefaultBackupPath,
			S3: S3Section{
				Key:    DefaultS3Key,
				Region: DefaultS3Region,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
