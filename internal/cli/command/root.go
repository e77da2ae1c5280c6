package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/medrec/internal/cli/output"
	"github.com/yndnr/medrec/internal/config"
	"github.com/yndnr/medrec/internal/core/service"
	"github.com/yndnr/medrec/internal/infra/buildinfo"
	"github.com/yndnr/medrec/internal/infra/shutdown"
	"github.com/yndnr/medrec/internal/infra/tlsroots"
	"github.com/yndnr/medrec/internal/storage/archive"
	"github.com/yndnr/medrec/internal/storage/backup"
	"github.com/yndnr/medrec/internal/storage/snapshot"
	"github.com/yndnr/medrec/internal/telemetry/logger"
	"github.com/yndnr/medrec/internal/telemetry/metric"
	"github.com/yndnr/medrec/pkg/crypto/adaptive"
)

const metaEnv = "env"

// shutdownTimeout bounds the hooks run when the app exits.
const shutdownTimeout = 10 * time.Second

// App creates the CLI application. Without a subcommand it starts the
// interactive menu.
func App() *cli.App {
	app := &cli.App{
		Name:    "medrec",
		Usage:   "Hospital patient records and doctor schedule",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			MenuCommand(),
			PatientCommand(),
			ScheduleCommand(),
			BackupCommand(),
			ReportCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before:   before,
		After:    after,
		Action:   menuAction,
		Metadata: map[string]any{},
	}

	return app
}

// globalFlags returns the global CLI flags. Flags override the config file
// and the MEDREC_* environment.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.medrec/medrec.yaml)",
			EnvVars: []string{"MEDREC_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding the patient and schedule files",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:  "show-phi",
			Usage: "Do not mask patient data in logs",
		},
		&cli.BoolFlag{
			Name:  "legacy",
			Usage: "Write files in the headerless legacy layout",
		},
		&cli.StringFlag{
			Name:  "archive-dir",
			Usage: "Keep discharged records in this directory",
		},
		&cli.StringFlag{
			Name:  "backup-driver",
			Usage: "Backup location: file, s3, memory",
		},
		&cli.StringFlag{
			Name:  "backup-path",
			Usage: "Backup file for the file driver",
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write metrics in Prometheus text format to this file on exit",
		},
	}
}

// flagKeys maps global flags to config keys.
var flagKeys = map[string]string{
	"data-dir":         "storage.data_dir",
	"legacy":           "storage.legacy_format",
	"archive-dir":      "storage.archive_dir",
	"backup-driver":    "backup.driver",
	"backup-path":      "backup.path",
	"log-level":        "log.level",
	"show-phi":         "log.show_phi",
	"metrics-textfile": "metrics.textfile",
}

// flagOverrides collects the global flags set on the command line.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for name, key := range flagKeys {
		if !c.IsSet(name) {
			continue
		}
		switch name {
		case "legacy", "show-phi":
			overrides[key] = c.Bool(name)
		default:
			overrides[key] = c.String(name)
		}
	}
	return overrides
}

// env is the per-invocation state shared by all commands.
type env struct {
	cfg     *config.Config
	cfgPath string
	format  output.Format
	log     logger.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	metrics  *metric.Registry
	records  *service.Records
	shutdown *shutdown.Handler
}

func before(c *cli.Context) error {
	cfgPath := c.String("config")
	cfg, err := config.Load(cfgPath, flagOverrides(c))
	if errors.Is(err, fs.ErrNotExist) && initializing(c) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  c.App.ErrWriter,
		ShowPHI: cfg.Log.ShowPHI,
	})
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	e := &env{
		cfg:      cfg,
		cfgPath:  cfgPath,
		format:   format,
		log:      log,
		stdin:    c.App.Reader,
		stdout:   c.App.Writer,
		stderr:   c.App.ErrWriter,
		metrics:  metric.NewRegistry(),
		shutdown: shutdown.NewHandler(shutdownTimeout),
	}
	if e.stdin == nil {
		e.stdin = os.Stdin
	}

	c.App.Metadata[metaEnv] = e
	return nil
}

// initializing reports whether the invocation is "config init", which may
// name a config file that does not exist yet.
func initializing(c *cli.Context) bool {
	args := c.Args().Slice()
	return len(args) >= 2 && args[0] == "config" && args[1] == "init"
}

func after(c *cli.Context) error {
	e, ok := c.App.Metadata[metaEnv].(*env)
	if !ok {
		return nil
	}

	// Metrics are exported while the archive is still open.
	var errs []error
	if path := e.cfg.Metrics.Textfile; path != "" {
		if err := e.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := e.shutdown.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// getEnv retrieves the invocation state from context.
func getEnv(c *cli.Context) *env {
	e, _ := c.App.Metadata[metaEnv].(*env)
	return e
}

// open builds the records service on first use and loads the primary
// files into it.
func (e *env) open(ctx context.Context) (*service.Records, error) {
	if e.records != nil {
		return e.records, nil
	}
	cfg := e.cfg

	snaps, err := snapshot.NewManager(snapshot.Config{
		Dir:          cfg.Storage.DataDir,
		PatientFile:  cfg.Storage.PatientFile,
		ScheduleFile: cfg.Storage.ScheduleFile,
		Legacy:       cfg.Storage.LegacyFormat,
	})
	if err != nil {
		return nil, err
	}

	target, err := newBackupTarget(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithMetrics(e.metrics),
		service.WithLogger(e.log),
		service.WithBackup(backup.NewManager(target, backup.WithLegacyFormat(cfg.Storage.LegacyFormat))),
	}

	if cfg.Storage.ArchiveDir != "" {
		arc, err := openArchive(cfg, e.log)
		if err != nil {
			return nil, err
		}
		if err := e.metrics.RegisterArchive(arc); err != nil {
			arc.Close()
			return nil, err
		}
		opts = append(opts, service.WithArchive(arc))
	}

	records := service.NewRecords(snaps, opts...)
	if _, err := records.Load(ctx); err != nil {
		records.Close()
		return nil, err
	}

	e.records = records
	e.shutdown.OnShutdown(func(context.Context) error {
		return records.Close()
	})
	return records, nil
}

// save persists the records after a mutating command.
func (e *env) save(ctx context.Context) error {
	if e.records == nil {
		return nil
	}
	_, err := e.records.Save(ctx)
	return err
}

func newBackupTarget(ctx context.Context, cfg *config.Config) (backup.Target, error) {
	switch backup.Driver(cfg.Backup.Driver) {
	case backup.DriverS3:
		s3cfg := backup.S3Config{
			Region:          cfg.Backup.S3.Region,
			Bucket:          cfg.Backup.S3.Bucket,
			Key:             cfg.Backup.S3.Key,
			Endpoint:        cfg.Backup.S3.Endpoint,
			AccessKeyID:     cfg.Backup.S3.AccessKeyID,
			SecretAccessKey: cfg.Backup.S3.SecretAccessKey,
			PathStyle:       cfg.Backup.S3.PathStyle,
		}
		if cfg.Backup.S3.CAFile != "" {
			roots, err := tlsroots.LoadCAFile(cfg.Backup.S3.CAFile)
			if err != nil {
				return nil, fmt.Errorf("backup.s3.ca_file: %w", err)
			}
			s3cfg.HTTPClient = roots.HTTPClient(0)
		}
		return backup.NewS3Target(ctx, s3cfg)
	case backup.DriverMemory:
		return backup.NewMemoryTarget(), nil
	default:
		return backup.NewFileTarget(cfg.BackupPath()), nil
	}
}

func openArchive(cfg *config.Config, log logger.Logger) (*archive.Archive, error) {
	secret, err := adaptive.ParseSecret(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("security.encryption_key: %w", err)
	}
	return archive.Open(archive.Config{
		Dir:    cfg.Storage.ArchiveDir,
		Secret: secret,
	}, logger.Slog(log))
}

// structured reports whether output goes through a formatter rather than
// plain messages.
func (e *env) structured() bool {
	return e.format != output.FormatTable
}

// render writes data in the selected format.
func (e *env) render(data any) error {
	return output.NewFormatter(e.format).Format(e.stdout, data)
}

// printf writes a plain message to stdout.
func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.stdout, format, args...)
}
