package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/medrec/internal/core/domain"
)

// ScheduleCommand returns the schedule subcommand group.
func ScheduleCommand() *cli.Command {
	return &cli.Command{
		Name:    "schedule",
		Aliases: []string{"sched"},
		Usage:   "Manage the weekly doctor schedule",
		Subcommands: []*cli.Command{
			{
				Name:  "assign",
				Usage: "Assign a doctor to a shift",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "day",
						Usage:    "Day: 0-6 (0 = Sunday) or a day name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "shift",
						Usage:    "Shift: 0-2 (0 = morning) or morning, afternoon, evening",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "doctor",
						Usage: "Doctor name; empty clears the slot",
					},
				},
				Action: scheduleAssign,
			},
			{
				Name:   "show",
				Usage:  "Display the full weekly schedule",
				Action: scheduleShow,
			},
		},
	}
}

func scheduleAssign(c *cli.Context) error {
	e := getEnv(c)

	day, err := parseDay(c.String("day"))
	if err != nil {
		return err
	}
	shift, err := parseShift(c.String("shift"))
	if err != nil {
		return err
	}
	doctor := c.String("doctor")

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	if err := records.AssignShift(c.Context, day, shift, doctor); err != nil {
		return err
	}
	if err := e.save(c.Context); err != nil {
		return err
	}

	if e.structured() {
		return e.render(slotView(domain.Slot{Day: day, Shift: shift, Doctor: domain.Truncate(doctor, domain.NameMaxLength)}))
	}
	e.printf("Doctor %s has been added to the schedule on %s, %s shift\n",
		doctor, domain.DayName(day), strings.ToLower(domain.ShiftName(shift)))
	return nil
}

func scheduleShow(c *cli.Context) error {
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}
	return e.render(scheduleView(records.Schedule()))
}

// parseDay accepts a day index or a case-insensitive day name or prefix.
func parseDay(s string) (int, error) {
	return parseIndex(s, domain.DaysInWeek, domain.DayName, "day")
}

// parseShift accepts a shift index or a case-insensitive shift name.
func parseShift(s string) (int, error) {
	return parseIndex(s, domain.ShiftsInDay, domain.ShiftName, "shift")
}

func parseIndex(s string, n int, name func(int) string, what string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 || i >= n {
			return 0, domain.ErrScheduleSlot.WithDetails(fmt.Sprintf("%s %d not in [0, %d]", what, i, n-1))
		}
		return i, nil
	}

	if len(s) >= 2 {
		for i := 0; i < n; i++ {
			if strings.HasPrefix(strings.ToLower(name(i)), strings.ToLower(s)) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
