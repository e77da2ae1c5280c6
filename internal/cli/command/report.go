package command

import (
	"github.com/urfave/cli/v2"
)

// ReportCommand returns the report subcommand group.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Summary reports",
		Subcommands: []*cli.Command{
			{
				Name:   "patients",
				Usage:  "Total number of current patients",
				Action: reportPatients,
			},
			{
				Name:   "shifts",
				Usage:  "Shifts covered by each doctor in the week",
				Action: reportShifts,
			},
			{
				Name:   "rooms",
				Usage:  "Room usage",
				Action: reportRooms,
			},
			{
				Name:   "discharged",
				Usage:  "Discharged patients (requires storage.archive_dir)",
				Action: reportDischarged,
			},
		},
	}
}

func reportPatients(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	total := records.TotalPatients()
	if e.structured() {
		return e.render(map[string]int{"total_patients": total})
	}
	e.printf("Total number of current patients: %d\n", total)
	return nil
}

func reportShifts(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	counts := records.DoctorShiftCounts()
	if len(counts) == 0 && !e.structured() {
		e.printf("No shifts assigned.\n")
		return nil
	}
	return e.render(counts)
}

func reportRooms(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	usage := roomView(records.RoomUsage())
	if len(usage) == 0 && !e.structured() {
		e.printf("No patients found!\n")
		return nil
	}
	return e.render(usage)
}

func reportDischarged(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	entries, err := records.Discharged(c.Context)
	if err != nil {
		return err
	}
	if len(entries) == 0 && !e.structured() {
		e.printf("No discharged patients.\n")
		return nil
	}
	return e.render(dischargeView(entries))
}
