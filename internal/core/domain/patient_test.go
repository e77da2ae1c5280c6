package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idSet map[int32]bool

func (s idSet) Contains(id int32) bool { return s[id] }

func TestValidateAge(t *testing.T) {
	tests := []struct {
		age  int32
		want bool
	}{
		{0, false},
		{1, true},
		{30, true},
		{125, true},
		{126, false},
		{-5, false},
		{150, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateAge(tt.age), "age %d", tt.age)
	}
}

func TestValidateID(t *testing.T) {
	active := idSet{1: true, 7: true}

	assert.False(t, ValidateID(1, active))
	assert.True(t, ValidateID(2, active))
	assert.True(t, ValidateID(1, nil))
}

func TestPatient_Validate(t *testing.T) {
	require.NoError(t, Patient{ID: 1, Age: 1}.Validate())
	require.NoError(t, Patient{ID: 1, Age: 125}.Validate())

	err := Patient{ID: 2, Age: 150}.Validate()
	require.ErrorIs(t, err, ErrInvalidAge)
	assert.Contains(t, err.Error(), "150")
}

func TestPatient_Normalize(t *testing.T) {
	p := Patient{
		ID:        1,
		Name:      "Alice\n",
		Diagnosis: strings.Repeat("d", DiagnosisMaxLength+10) + "\r\n",
	}
	n := p.Normalize()

	assert.Equal(t, "Alice", n.Name)
	assert.Len(t, n.Diagnosis, DiagnosisMaxLength)
	assert.Equal(t, "Alice\n", p.Name, "original untouched")
}

func TestPatient_NormalizeKeepsExactMaxLength(t *testing.T) {
	name := strings.Repeat("n", NameMaxLength)
	n := Patient{Name: name}.Normalize()
	assert.Equal(t, name, n.Name)
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes; cutting at 3 must not split it.
	assert.Equal(t, "aé", Truncate("aéé", 3))
	assert.Equal(t, "aé", Truncate("aéé", 4))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("é", 1))
}

func TestTrimLine(t *testing.T) {
	assert.Equal(t, "Bob", TrimLine("Bob\n"))
	assert.Equal(t, "Bob", TrimLine("Bob\r\n"))
	assert.Equal(t, "Bob ", TrimLine("Bob "))
	assert.Equal(t, "Bob\n", TrimLine("Bob\n\n"))
}

func TestNewDischarge(t *testing.T) {
	d, err := NewDischarge(Patient{ID: 3, Name: "Carol", Age: 40})
	require.NoError(t, err)

	assert.Len(t, d.Key, 26)
	assert.Equal(t, int32(3), d.Patient.ID)
	assert.False(t, d.DischargedAtTime().IsZero())
}
