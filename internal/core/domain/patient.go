package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Patient constraints.
const (
	// NameMaxLength is the maximum name length in bytes. It is also the
	// width of every name field in the persisted layout.
	NameMaxLength = 20

	// DiagnosisMaxLength is the maximum diagnosis length in bytes.
	DiagnosisMaxLength = 100

	MinAge = 1
	MaxAge = 125
)

// Patient is an admission record.
type Patient struct {
	// ID is supplied by the caller and unique among active records.
	ID int32 `json:"id" yaml:"id"`

	// Name is the display and search key. Not required to be unique.
	Name string `json:"name" yaml:"name"`

	Age       int32  `json:"age" yaml:"age"`
	Diagnosis string `json:"diagnosis" yaml:"diagnosis"`
	Room      int32  `json:"room" yaml:"room"`
}

// IDLookup answers whether an id is held by an active record.
type IDLookup interface {
	Contains(id int32) bool
}

// ValidateID reports whether id is free in the given lookup.
func ValidateID(id int32, lookup IDLookup) bool {
	if lookup == nil {
		return true
	}
	return !lookup.Contains(id)
}

// ValidateAge reports whether age lies in the closed range [MinAge, MaxAge].
func ValidateAge(age int32) bool {
	return age >= MinAge && age <= MaxAge
}

// Normalize returns a copy of p with line terminators trimmed and the text
// fields truncated to their byte limits.
func (p Patient) Normalize() Patient {
	p.Name = Truncate(TrimLine(p.Name), NameMaxLength)
	p.Diagnosis = Truncate(TrimLine(p.Diagnosis), DiagnosisMaxLength)
	return p
}

// Validate checks the age rule. Id uniqueness depends on store state and
// is checked by the store.
func (p Patient) Validate() error {
	if !ValidateAge(p.Age) {
		return ErrInvalidAge.WithDetails(fmt.Sprintf("age %d not in [%d, %d]", p.Age, MinAge, MaxAge))
	}
	return nil
}

// String renders the record on one line.
func (p Patient) String() string {
	return fmt.Sprintf("Patient ID: %d, Name: %s, Age: %d, Diagnosis: %s, Room Number: %d",
		p.ID, p.Name, p.Age, p.Diagnosis, p.Room)
}

// TrimLine removes one trailing "\n" or "\r\n".
func TrimLine(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
