// Package command provides the medrec CLI command definitions.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, per-invocation setup and teardown
//   - menu.go: Interactive numbered menu (default action)
//   - patient.go: Patient subcommand group
//   - schedule.go: Doctor schedule subcommand group
//   - backup.go: Backup/restore subcommand group
//   - report.go: Report subcommand group
//   - config.go: Configuration subcommand group
//
// One-shot commands load the primary files, act, and save when they
// changed something.
package command
