package config

// Config is the root configuration for medrec.
type Config struct {
	Storage  StorageSection  `koanf:"storage" yaml:"storage"`
	Backup   BackupSection   `koanf:"backup" yaml:"backup"`
	Security SecuritySection `koanf:"security" yaml:"security"`
	Log      LogSection      `koanf:"log" yaml:"log"`
	Metrics  MetricsSection  `koanf:"metrics" yaml:"metrics"`
}

// StorageSection configures the primary store files.
type StorageSection struct {
	DataDir      string `koanf:"data_dir" yaml:"data_dir"`
	PatientFile  string `koanf:"patient_file" yaml:"patient_file"`
	ScheduleFile string `koanf:"schedule_file" yaml:"schedule_file"`

	// LegacyFormat writes headerless files readable by older builds.
	LegacyFormat bool `koanf:"legacy_format" yaml:"legacy_format"`

	// ArchiveDir holds the discharge archive. Empty disables archiving.
	ArchiveDir string `koanf:"archive_dir" yaml:"archive_dir"`
}

// BackupSection configures the backup target.
type BackupSection struct {
	// Driver is one of file, s3, memory.
	Driver string    `koanf:"driver" yaml:"driver"`
	Path   string    `koanf:"path" yaml:"path"`
	S3     S3Section `koanf:"s3" yaml:"s3"`
}

// S3Section configures the s3 backup driver.
type S3Section struct {
	Bucket    string `koanf:"bucket" yaml:"bucket"`
	Key       string `koanf:"key" yaml:"key"`
	Region    string `koanf:"region" yaml:"region"`
	Endpoint  string `koanf:"endpoint" yaml:"endpoint"`
	PathStyle bool   `koanf:"path_style" yaml:"path_style"`

	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file"`

	// Static credentials. Empty falls back to the default AWS chain.
	AccessKeyID     string `koanf:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key" yaml:"secret_access_key"`
}

// SecuritySection configures encryption of the discharge archive.
type SecuritySection struct {
	// EncryptionKey is a 64-digit hex key or a passphrase.
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level" yaml:"level"`
	Format  string `koanf:"format" yaml:"format"`
	ShowPHI bool   `koanf:"show_phi" yaml:"show_phi"`
}

// MetricsSection configures the metrics textfile export.
type MetricsSection struct {
	// Textfile is written on exit when set.
	Textfile string `koanf:"textfile" yaml:"textfile"`
}
