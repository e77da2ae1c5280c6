package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/medrec/internal/cli/output"
	"github.com/yndnr/medrec/internal/cli/repl"
)

// BackupCommand returns the backup subcommand group.
func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Backup and restore patient data",
		Subcommands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Overwrite the backup with the current records and schedule",
				Action: backupCreate,
			},
			{
				Name:  "restore",
				Usage: "Replace the records and schedule with the backup",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: backupRestore,
			},
			{
				Name:   "info",
				Usage:  "Describe the current backup",
				Action: backupInfo,
			},
		},
	}
}

func backupCreate(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(e.stderr, "Writing backup...")
	spinner.Start()
	info, err := records.Backup(c.Context)
	if err != nil {
		spinner.Fail("Backup failed")
		return err
	}
	spinner.Success("Data backup successful.")

	if e.structured() {
		return e.render(info)
	}
	e.printf("%d records, %s at %s\n", info.Records, output.Bytes(info.Size), info.Location)
	return nil
}

func backupRestore(c *cli.Context) error {
	e := getEnv(c)

	if !c.Bool("force") {
		ok, err := repl.NewSession(e.stdin, e.stdout).Confirm("Replace all current records with the backup?")
		if err != nil {
			return err
		}
		if !ok {
			e.printf("Restore canceled.\n")
			return nil
		}
	}

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(e.stderr, "Restoring backup...")
	spinner.Start()
	n, err := records.Restore(c.Context)
	if err != nil {
		spinner.Fail("Restore failed")
		return err
	}
	spinner.Success("Data restored from backup.")

	if err := e.save(c.Context); err != nil {
		return err
	}

	if e.structured() {
		return e.render(map[string]int{"records": n})
	}
	e.printf("%d records restored.\n", n)
	return nil
}

func backupInfo(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	info, err := records.BackupInfo(c.Context)
	if err != nil {
		return err
	}

	if e.structured() {
		return e.render(info)
	}
	e.printf("Location:  %s\n", info.Location)
	e.printf("Size:      %s\n", output.Bytes(info.Size))
	if !info.LastModified.IsZero() {
		e.printf("Modified:  %s (%s)\n", info.LastModified.Format("2006-01-02 15:04:05"), output.Since(info.LastModified))
	}
	return nil
}
