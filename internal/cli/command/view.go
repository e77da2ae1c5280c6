package command

import (
	"strings"
	"time"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/internal/core/service"
)

const noDoctor = "No doctor assigned"

type slotRow struct {
	Day    string `json:"day" yaml:"day"`
	Shift  string `json:"shift" yaml:"shift"`
	Doctor string `json:"doctor" yaml:"doctor"`
}

func slotView(s domain.Slot) slotRow {
	doctor := s.Doctor
	if doctor == "" {
		doctor = noDoctor
	}
	return slotRow{
		Day:    domain.DayName(s.Day),
		Shift:  domain.ShiftName(s.Shift),
		Doctor: doctor,
	}
}

func scheduleView(s *domain.Schedule) []slotRow {
	slots := s.AllSlots()
	rows := make([]slotRow, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, slotView(slot))
	}
	return rows
}

type roomRow struct {
	Room     int32  `json:"room" yaml:"room"`
	Count    int    `json:"count" yaml:"count"`
	Patients string `json:"patients" yaml:"patients"`
}

func roomView(usage []service.RoomUsage) []roomRow {
	rows := make([]roomRow, 0, len(usage))
	for _, u := range usage {
		names := make([]string, 0, len(u.Patients))
		for _, p := range u.Patients {
			names = append(names, p.Name)
		}
		rows = append(rows, roomRow{
			Room:     u.Room,
			Count:    len(u.Patients),
			Patients: strings.Join(names, ", "),
		})
	}
	return rows
}

type dischargeRow struct {
	Key          string    `json:"key" yaml:"key"`
	ID           int32     `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Room         int32     `json:"room" yaml:"room"`
	DischargedAt time.Time `json:"discharged_at" yaml:"discharged_at"`
}

func dischargeView(entries []domain.Discharge) []dischargeRow {
	rows := make([]dischargeRow, 0, len(entries))
	for _, d := range entries {
		rows = append(rows, dischargeRow{
			Key:          d.Key,
			ID:           d.Patient.ID,
			Name:         d.Patient.Name,
			Room:         d.Patient.Room,
			DischargedAt: d.DischargedAtTime(),
		})
	}
	return rows
}
