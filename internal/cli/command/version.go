package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/medrec/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			if e.structured() {
				return e.render(buildinfo.Get())
			}
			e.printf("%s\n", buildinfo.String())
			return nil
		},
	}
}
