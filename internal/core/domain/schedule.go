package domain

import "fmt"

// Weekly grid dimensions.
const (
	DaysInWeek  = 7
	ShiftsInDay = 3
	SlotCount   = DaysInWeek * ShiftsInDay
)

var (
	dayNames   = [DaysInWeek]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	shiftNames = [ShiftsInDay]string{"Morning", "Afternoon", "Evening"}
)

// DayName returns the display name of a day index (0 = Sunday).
func DayName(day int) string {
	if day < 0 || day >= DaysInWeek {
		return fmt.Sprintf("day-%d", day)
	}
	return dayNames[day]
}

// ShiftName returns the display name of a shift index (0 = morning).
func ShiftName(shift int) string {
	if shift < 0 || shift >= ShiftsInDay {
		return fmt.Sprintf("shift-%d", shift)
	}
	return shiftNames[shift]
}

// Slot is one cell of the weekly grid.
type Slot struct {
	Day    int    `json:"day" yaml:"day"`
	Shift  int    `json:"shift" yaml:"shift"`
	Doctor string `json:"doctor" yaml:"doctor"`
}

// Schedule maps (day, shift) to a doctor name. The empty string means
// unassigned. The zero value is an empty grid.
type Schedule struct {
	slots [DaysInWeek][ShiftsInDay]string
}

// NewSchedule returns an empty grid.
func NewSchedule() *Schedule {
	return &Schedule{}
}

func checkSlot(day, shift int) error {
	if day < 0 || day >= DaysInWeek {
		return ErrScheduleSlot.WithDetails(fmt.Sprintf("day %d not in [0, %d]", day, DaysInWeek-1))
	}
	if shift < 0 || shift >= ShiftsInDay {
		return ErrScheduleSlot.WithDetails(fmt.Sprintf("shift %d not in [0, %d]", shift, ShiftsInDay-1))
	}
	return nil
}

// Get returns the doctor assigned to a slot.
func (s *Schedule) Get(day, shift int) (string, error) {
	if err := checkSlot(day, shift); err != nil {
		return "", err
	}
	return s.slots[day][shift], nil
}

// Set assigns a doctor to a slot. The name is trimmed and truncated to
// NameMaxLength bytes; an empty name clears the slot.
func (s *Schedule) Set(day, shift int, doctor string) error {
	if err := checkSlot(day, shift); err != nil {
		return err
	}
	s.slots[day][shift] = Truncate(TrimLine(doctor), NameMaxLength)
	return nil
}

// AllSlots returns every slot in row-major order (day, then shift).
func (s *Schedule) AllSlots() []Slot {
	out := make([]Slot, 0, SlotCount)
	for day := 0; day < DaysInWeek; day++ {
		for shift := 0; shift < ShiftsInDay; shift++ {
			out = append(out, Slot{Day: day, Shift: shift, Doctor: s.slots[day][shift]})
		}
	}
	return out
}

// Names returns the doctor names in row-major order.
func (s *Schedule) Names() []string {
	out := make([]string, 0, SlotCount)
	for day := 0; day < DaysInWeek; day++ {
		out = append(out, s.slots[day][:]...)
	}
	return out
}

// SetNames overwrites the grid from row-major names. Missing trailing
// entries clear their slots.
func (s *Schedule) SetNames(names []string) {
	for i := 0; i < SlotCount; i++ {
		name := ""
		if i < len(names) {
			name = Truncate(names[i], NameMaxLength)
		}
		s.slots[i/ShiftsInDay][i%ShiftsInDay] = name
	}
}

// Clear unassigns every slot.
func (s *Schedule) Clear() {
	s.slots = [DaysInWeek][ShiftsInDay]string{}
}

// Clone returns an independent copy.
func (s *Schedule) Clone() *Schedule {
	c := *s
	return &c
}

// ReplaceFrom overwrites s with the contents of other.
func (s *Schedule) ReplaceFrom(other *Schedule) {
	if other == nil {
		s.Clear()
		return
	}
	s.slots = other.slots
}

// Equal reports whether both grids hold the same assignments.
func (s *Schedule) Equal(other *Schedule) bool {
	if other == nil {
		return false
	}
	return s.slots == other.slots
}
