package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/medrec/internal/cli/output"
	"github.com/yndnr/medrec/internal/cli/repl"
	"github.com/yndnr/medrec/internal/config"
	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/core/service"
	"github.com/yndnr/medrec/internal/infra/confloader"
	"github.com/yndnr/medrec/internal/telemetry/logger"
)

const menuTitle = "HOSPITAL MANAGEMENT SYSTEM"

// MenuCommand returns the interactive menu command. It is also the default
// action when no subcommand is given.
func MenuCommand() *cli.Command {
	return &cli.Command{
		Name:   "menu",
		Usage:  "Interactive numbered menu",
		Action: menuAction,
	}
}

func menuAction(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	e := getEnv(c)

	records, err := e.open(c.Context)
	if err != nil {
		return err
	}

	history := repl.NewHistory(filepath.Join(filepath.Dir(e.cfgPath), "history"))
	if err := history.Load(); err != nil {
		e.log.Warn("history not loaded", "error", err)
	}

	if stop := watchConfig(e, flagOverrides(c)); stop != nil {
		defer stop()
	}

	m := &menu{records: records}
	r := repl.New(m.items(),
		repl.WithIO(e.stdin, e.stdout),
		repl.WithTitle(menuTitle),
		repl.WithHistory(history),
	)
	err = r.Run(c.Context)

	if herr := history.Save(); herr != nil {
		e.log.Warn("history not saved", "error", herr)
	}
	return err
}

// watchConfig reloads log.level when the config file changes. It returns
// nil when there is no file to watch.
func watchConfig(e *env, overrides map[string]any) func() {
	if _, err := os.Stat(e.cfgPath); err != nil {
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(e.log)))
	if err != nil {
		e.log.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(e.cfgPath); err != nil {
		w.Stop()
		return nil
	}

	w.OnChange(func(path string) {
		cfg, err := config.Load(path, overrides)
		if err != nil {
			e.log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			e.log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()

	return func() { w.Stop() }
}

// menu holds the actions behind the numbered menu.
type menu struct {
	records *service.Records
}

func (m *menu) items() []repl.Item {
	return []repl.Item{
		{Key: "1", Label: "Add Patient Record", Words: []string{"add", "admit"}, Action: m.add},
		{Key: "2", Label: "View All Patient Records", Words: []string{"view", "list"}, Action: m.view},
		{Key: "3", Label: "Search for a Patient", Words: []string{"search", "find"}, Action: m.search},
		{Key: "4", Label: "Discharge a Patient", Words: []string{"discharge"}, Action: m.discharge},
		{Key: "5", Label: "Manage Doctor Schedule", Words: []string{"schedule"}, Action: m.schedule},
		{Key: "6", Label: "Save and Exit", Words: []string{"save"}, Action: m.saveAndExit},
		{Key: "7", Label: "Backup Data", Words: []string{"backup"}, Action: m.backup},
		{Key: "8", Label: "Restore Data", Words: []string{"restore"}, Action: m.restore},
		{Key: "9", Label: "Reports", Words: []string{"reports"}, Action: m.reports},
	}
}

func (m *menu) add(ctx context.Context, s *repl.Session) error {
	id, err := s.PromptInt("Enter Patient ID: ")
	if err != nil {
		return err
	}
	if _, err := m.records.FindByID(id); err == nil {
		s.Printf("Error: Patient #%d already exists.\n", id)
		return nil
	}

	name, err := s.Prompt("Enter Patient Name: ")
	if err != nil {
		return err
	}

	age, err := s.PromptInt("Enter Patient Age: ")
	if err != nil {
		return err
	}
	if !domain.ValidateAge(age) {
		s.Printf("Error: Patient age must be between %d and %d.\n", domain.MinAge, domain.MaxAge)
		return nil
	}

	diagnosis, err := s.Prompt("Enter Patient Diagnosis: ")
	if err != nil {
		return err
	}
	room, err := s.PromptInt("Enter Room Number: ")
	if err != nil {
		return err
	}

	p := domain.Patient{ID: id, Name: name, Age: age, Diagnosis: diagnosis, Room: room}
	if err := m.records.Admit(ctx, p); err != nil {
		return err
	}
	s.Printf("%s Added!\n", p.Normalize().Name)
	return nil
}

func (m *menu) view(_ context.Context, s *repl.Session) error {
	patients := m.records.List()
	if len(patients) == 0 {
		s.Println("No patients found!")
		return nil
	}

	t := output.NewTable("PATIENT ID", "NAME", "AGE", "DIAGNOSIS", "ROOM NUMBER")
	for _, p := range patients {
		t.AddRow(
			strconv.Itoa(int(p.ID)),
			p.Name,
			strconv.Itoa(int(p.Age)),
			p.Diagnosis,
			strconv.Itoa(int(p.Room)),
		)
	}
	return t.Render(s.Output())
}

func (m *menu) search(_ context.Context, s *repl.Session) error {
	if m.records.Count() == 0 {
		s.Println("Error: No patients found!")
		return nil
	}

	by, err := s.Choose("Search by:", []string{"ID", "Name"})
	if err != nil {
		return err
	}

	var p domain.Patient
	if by == 0 {
		id, err := s.PromptInt("Enter Patient ID: ")
		if err != nil {
			return err
		}
		if p, err = m.records.FindByID(id); err != nil {
			s.Printf("Patient with ID %d not found.\n", id)
			return nil
		}
	} else {
		name, err := s.Prompt("Enter Patient Name: ")
		if err != nil {
			return err
		}
		if p, err = m.records.FindByName(name); err != nil {
			s.Printf("Patient with name %s not found.\n", name)
			return nil
		}
	}

	s.Printf("Found Patient: %s (ID: %d, Age: %d, Diagnosis: %s, Room: %d)\n",
		p.Name, p.ID, p.Age, p.Diagnosis, p.Room)
	return nil
}

func (m *menu) discharge(ctx context.Context, s *repl.Session) error {
	if m.records.Count() == 0 {
		s.Println("No patients found!")
		return nil
	}

	id, err := s.PromptInt("Enter ID of patient to discharge: ")
	if err != nil {
		return err
	}

	_, err = m.records.Discharge(ctx, id)
	if errors.Is(err, domain.ErrPatientNotFound) {
		s.Printf("Patient with ID %d not found.\n", id)
		return nil
	}
	if err != nil {
		return err
	}
	s.Printf("Patient #%d has been discharged.\n", id)
	return nil
}

func (m *menu) schedule(ctx context.Context, s *repl.Session) error {
	choice, err := s.Choose("What would you like to do with the doctors' schedule?", []string{
		"Assign a doctor to a shift",
		"Display the full weekly schedule",
	})
	if err != nil {
		return err
	}
	if choice == 1 {
		s.Println("Doctor Weekly Schedule:")
		return output.NewFormatter(output.FormatTable).Format(s.Output(), scheduleView(m.records.Schedule()))
	}

	day, err := s.PromptInt("Enter Day: (0 for Sunday, 1 for Monday, 2 for Tuesday...) ")
	if err != nil {
		return err
	}
	if day < 0 || day >= domain.DaysInWeek {
		s.Println("Error: Day of week out of range.")
		return nil
	}

	shift, err := s.PromptInt("Enter Shift: (0 for morning, 1 for afternoon, 2 for evening) ")
	if err != nil {
		return err
	}
	if shift < 0 || shift >= domain.ShiftsInDay {
		s.Println("Error: Shift out of range.")
		return nil
	}

	doctor, err := s.Prompt("Enter the doctor's name: ")
	if err != nil {
		return err
	}
	if err := m.records.AssignShift(ctx, int(day), int(shift), doctor); err != nil {
		return err
	}
	s.Printf("Doctor %s has been added to the schedule on day %d, shift %d\n", doctor, day, shift)
	return nil
}

func (m *menu) saveAndExit(ctx context.Context, s *repl.Session) error {
	if _, err := m.records.Save(ctx); err != nil {
		return fmt.Errorf("saving patient data: %w", err)
	}
	s.Println("Data saved successfully.")
	return repl.ErrExit
}

func (m *menu) backup(ctx context.Context, s *repl.Session) error {
	if _, err := m.records.Backup(ctx); err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	s.Println("Data backup successful.")
	return nil
}

func (m *menu) restore(ctx context.Context, s *repl.Session) error {
	_, err := m.records.Restore(ctx)
	if errors.Is(err, domain.ErrNoBackupFound) {
		s.Println("Error: No backup file found.")
		return nil
	}
	if err != nil {
		return err
	}
	s.Println("Data restored from backup.")
	return nil
}

func (m *menu) reports(ctx context.Context, s *repl.Session) error {
	choice, err := s.Choose("REPORTING MENU:", []string{
		"Total number of patients",
		"List of discharged patients",
		"Total shifts covered by each doctor (in a week)",
		"Room usage report",
		"Back to main menu",
	})
	if err != nil {
		return err
	}

	table := output.NewFormatter(output.FormatTable)
	switch choice {
	case 0:
		s.Printf("Total number of current patients: %d\n", m.records.TotalPatients())
	case 1:
		entries, err := m.records.Discharged(ctx)
		if errors.Is(err, domain.ErrArchiveDisabled) {
			s.Println("Discharged patients are not tracked (set storage.archive_dir).")
			return nil
		}
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			s.Println("No discharged patients.")
			return nil
		}
		return table.Format(s.Output(), dischargeView(entries))
	case 2:
		s.Println("Doctor shift Summary:")
		for _, d := range m.records.DoctorShiftCounts() {
			unit := "shifts"
			if d.Shifts == 1 {
				unit = "shift"
			}
			s.Printf("%s: %d %s\n", d.Doctor, d.Shifts, unit)
		}
	case 3:
		usage := m.records.RoomUsage()
		if len(usage) == 0 {
			s.Println("No patients found!")
			return nil
		}
		return table.Format(s.Output(), roomView(usage))
	}
	return nil
}
