package metric

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMetrics(t *testing.T) {
	r := NewRegistry()

	r.IncAdmission()
	r.IncAdmission()
	r.IncRejection(ReasonInvalidAge)
	r.IncDischarge()
	r.SetPatientsActive(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Admissions))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AdmissionRejections.WithLabelValues(ReasonInvalidAge)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.AdmissionRejections.WithLabelValues(ReasonDuplicateID)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Discharges))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PatientsActive))
}

func TestObserveSnapshot(t *testing.T) {
	r := NewRegistry()

	start := time.Now()
	r.ObserveSnapshot(OpSave, start, nil)
	r.ObserveSnapshot(OpSave, start, nil)
	r.ObserveSnapshot(OpRestore, start, errors.New("boom"))
	r.SetSnapshotBytes("primary", 280)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.SnapshotOperations.WithLabelValues(OpSave, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SnapshotOperations.WithLabelValues(OpRestore, "error")))
	assert.Equal(t, 280.0, testutil.ToFloat64(r.SnapshotBytes.WithLabelValues("primary")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.SnapshotDuration))
}

func TestGatherAndCompare(t *testing.T) {
	r := NewRegistry()
	r.IncDischarge()

	expected := `
# HELP medrec_discharges_total Discharged patients.
# TYPE medrec_discharges_total counter
medrec_discharges_total 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "medrec_discharges_total"))
}

type fakeSizer struct{ lsm, vlog int64 }

func (f fakeSizer) Size() (int64, int64) { return f.lsm, f.vlog }

func TestArchiveCollector(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterArchive(fakeSizer{lsm: 100, vlog: 2048}))

	expected := `
# HELP medrec_archive_size_bytes Discharge archive size on disk by part.
# TYPE medrec_archive_size_bytes gauge
medrec_archive_size_bytes{part="lsm"} 100
medrec_archive_size_bytes{part="vlog"} 2048
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "medrec_archive_size_bytes"))
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.SetPatientsActive(4)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "medrec_patients_active 4")
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.IncAdmission()

	path := filepath.Join(t.TempDir(), "medrec.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "medrec_admissions_total 1")
}
