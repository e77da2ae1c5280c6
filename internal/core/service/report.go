package service

import (
	"context"
	"sort"

	"github.com/yndnr/medrec/internal/core/domain"
)

// DoctorShifts is the number of slots assigned to one doctor.
type DoctorShifts struct {
	Doctor string `json:"doctor" yaml:"doctor"`
	Shifts int    `json:"shifts" yaml:"shifts"`
}

// RoomUsage lists the patients in one room.
type RoomUsage struct {
	Room     int32            `json:"room" yaml:"room"`
	Patients []domain.Patient `json:"patients" yaml:"patients"`
}

// TotalPatients returns the number of admitted patients.
func (r *Records) TotalPatients() int {
	return r.Count()
}

// DoctorShiftCounts counts assigned slots per doctor, in the order doctors
// first appear when the week is read day by day.
func (r *Records) DoctorShiftCounts() []DoctorShifts {
	r.mu.Lock()
	slots := r.schedule.AllSlots()
	r.mu.Unlock()

	var out []DoctorShifts
	pos := make(map[string]int)
	for _, s := range slots {
		if s.Doctor == "" {
			continue
		}
		i, ok := pos[s.Doctor]
		if !ok {
			i = len(out)
			pos[s.Doctor] = i
			out = append(out, DoctorShifts{Doctor: s.Doctor})
		}
		out[i].Shifts++
	}
	return out
}

// RoomUsage groups patients by room, ordered by room number. Patients keep
// admission order within a room.
func (r *Records) RoomUsage() []RoomUsage {
	records := r.List()

	byRoom := make(map[int32][]domain.Patient)
	for _, p := range records {
		byRoom[p.Room] = append(byRoom[p.Room], p)
	}

	out := make([]RoomUsage, 0, len(byRoom))
	for room, patients := range byRoom {
		out = append(out, RoomUsage{Room: room, Patients: patients})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room < out[j].Room })
	return out
}

// Discharged returns archived discharges, oldest first.
func (r *Records) Discharged(ctx context.Context) ([]domain.Discharge, error) {
	if r.archive == nil {
		return nil, domain.ErrArchiveDisabled
	}
	return r.archive.List(ctx)
}
