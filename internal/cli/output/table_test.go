package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, data any) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, data))
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestTableFormatter_Slice(t *testing.T) {
	lines := render(t, []row{
		{ID: 1, Name: "Alice", Diagnosis: "Flu"},
		{ID: 22, Name: "Bob"},
	})

	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "NAME", "DIAGNOSIS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Alice", "Flu"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"22", "Bob", "-"}, strings.Fields(lines[2]))
}

func TestTableFormatter_EmptySlice(t *testing.T) {
	lines := render(t, []row{})
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"ID", "NAME", "DIAGNOSIS"}, strings.Fields(lines[0]))
}

func TestTableFormatter_Struct(t *testing.T) {
	lines := render(t, row{ID: 3, Name: "Carol"})

	require.Len(t, lines, 4)
	assert.Equal(t, []string{"FIELD", "VALUE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"ID", "3"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"NAME", "Carol"}, strings.Fields(lines[2]))
}

func TestTableFormatter_MapSorted(t *testing.T) {
	lines := render(t, map[string]int{"b": 2, "a": 1})

	require.Len(t, lines, 3)
	assert.Equal(t, []string{"a", "1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"b", "2"}, strings.Fields(lines[2]))
}

func TestTableFormatter_FallbackJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, 42))
	assert.Equal(t, "42\n", buf.String())
}

func TestTable_NoHeaders(t *testing.T) {
	table := NewTable("A", "B")
	table.AddRow("1", "2")

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{NoHeaders: true}).Format(&buf, table))
	assert.Equal(t, "1  2\n", buf.String())
}

func TestTable_Records(t *testing.T) {
	table := NewTable("ROOM", "PATIENTS")
	table.AddRow("101")

	assert.Equal(t, []map[string]string{{"room": "101", "patients": ""}}, table.Records())
}

func TestFormatValue(t *testing.T) {
	var nilPtr *int
	when := time.Date(2025, 1, 29, 8, 30, 0, 0, time.UTC)

	type s struct {
		T   time.Time
		Z   time.Time
		P   *int
		B   bool
		F   float64
		L   []int
		E   []int
		U   uint16
		Str string
	}
	v := s{T: when, P: nilPtr, B: true, F: 1.5, L: []int{1, 2}, U: 7}

	lines := render(t, v)
	got := map[string]string{}
	for _, l := range lines[1:] {
		f := strings.SplitN(strings.TrimSpace(l), " ", 2)
		got[f[0]] = strings.TrimSpace(f[1])
	}

	assert.Equal(t, "2025-01-29 08:30", got["T"])
	assert.Equal(t, "-", got["Z"])
	assert.Equal(t, "-", got["P"])
	assert.Equal(t, "true", got["B"])
	assert.Equal(t, "1.50", got["F"])
	assert.Equal(t, "[2 items]", got["L"])
	assert.Equal(t, "-", got["E"])
	assert.Equal(t, "7", got["U"])
	assert.Equal(t, "-", got["STR"])
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "280 B", Bytes(280))
	assert.Equal(t, "1.0 KiB", Bytes(1024))
	assert.Equal(t, "-", Bytes(-1))
}
