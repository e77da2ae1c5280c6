package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/medrec/internal/core/domain"
)

// PatientCommand returns the patient subcommand group.
func PatientCommand() *cli.Command {
	return &cli.Command{
		Name:    "patient",
		Aliases: []string{"pt"},
		Usage:   "Manage patient records",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Admit a patient",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Patient ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Patient name",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "age",
						Aliases:  []string{"a"},
						Usage:    fmt.Sprintf("Age (%d-%d)", domain.MinAge, domain.MaxAge),
						Required: true,
					},
					&cli.StringFlag{
						Name:  "diagnosis",
						Usage: "Diagnosis",
					},
					&cli.IntFlag{
						Name:  "room",
						Usage: "Room number",
					},
				},
				Action: patientAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List active patients in admission order",
				Action:  patientList,
			},
			{
				Name:      "get",
				Usage:     "Show a patient by ID",
				ArgsUsage: "ID",
				Action:    patientGet,
			},
			{
				Name:      "find",
				Usage:     "Find the first patient with an exact name",
				ArgsUsage: "NAME",
				Action:    patientFind,
			},
			{
				Name:      "discharge",
				Usage:     "Discharge a patient",
				ArgsUsage: "ID",
				Action:    patientDischarge,
			},
		},
	}
}

func patientAdd(c *cli.Context) error {
	e := getEnv(c)

	p := domain.Patient{Name: c.String("name"), Diagnosis: c.String("diagnosis")}
	var err error
	if p.ID, err = toInt32("id", c.Int("id")); err != nil {
		return err
	}
	if p.Age, err = toInt32("age", c.Int("age")); err != nil {
		return err
	}
	if p.Room, err = toInt32("room", c.Int("room")); err != nil {
		return err
	}

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	if err := records.Admit(c.Context, p); err != nil {
		return err
	}
	if err := e.save(c.Context); err != nil {
		return err
	}

	admitted, err := records.FindByID(p.ID)
	if err != nil {
		return err
	}
	if e.structured() {
		return e.render(admitted)
	}
	e.printf("%s Added!\n", admitted.Name)
	return nil
}

func patientList(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	patients := records.List()
	if len(patients) == 0 && !e.structured() {
		e.printf("No patients found!\n")
		return nil
	}
	return e.render(patients)
}

func patientGet(c *cli.Context) error {
	e := getEnv(c)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	p, err := records.FindByID(id)
	if err != nil {
		return err
	}
	return e.render(p)
}

func patientFind(c *cli.Context) error {
	e := getEnv(c)

	name := strings.Join(c.Args().Slice(), " ")
	if name == "" {
		return fmt.Errorf("patient name required")
	}

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	p, err := records.FindByName(name)
	if err != nil {
		return err
	}
	return e.render(p)
}

func patientDischarge(c *cli.Context) error {
	e := getEnv(c)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	d, err := records.Discharge(c.Context, id)
	if err != nil {
		return err
	}
	if err := e.save(c.Context); err != nil {
		return err
	}

	if e.structured() {
		return e.render(d)
	}
	e.printf("Patient #%d has been discharged.\n", id)
	return nil
}

// idArg parses the first positional argument as a patient ID.
func idArg(c *cli.Context) (int32, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("patient ID required")
	}
	id, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid patient ID %q", arg)
	}
	return int32(id), nil
}

func toInt32(name string, v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s %d out of range", name, v)
	}
	return int32(v), nil
}
