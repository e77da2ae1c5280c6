package metric

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "medrec"

// Rejection reasons for admissions.
const (
	ReasonDuplicateID = "duplicate_id"
	ReasonInvalidAge  = "invalid_age"
	ReasonOther       = "other"
)

// Snapshot operations.
const (
	OpSave    = "save"
	OpLoad    = "load"
	OpBackup  = "backup"
	OpRestore = "restore"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	PatientsActive      prometheus.Gauge
	Admissions          prometheus.Counter
	AdmissionRejections *prometheus.CounterVec
	Discharges          prometheus.Counter

	SnapshotOperations *prometheus.CounterVec
	SnapshotDuration   *prometheus.HistogramVec
	SnapshotBytes      *prometheus.GaugeVec
}

// NewRegistry creates a registry with every medrec metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		PatientsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patients_active",
			Help:      "Number of admitted patients in the record store.",
		}),
		Admissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Accepted admissions.",
		}),
		AdmissionRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_rejections_total",
			Help:      "Rejected admissions by reason.",
		}, []string{"reason"}),
		Discharges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discharges_total",
			Help:      "Discharged patients.",
		}),

		SnapshotOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_operations_total",
			Help:      "Save, load, backup and restore operations by result.",
		}, []string{"op", "result"}),
		SnapshotDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of snapshot operations.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"op"}),
		SnapshotBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Size of the last written file by kind (primary, backup).",
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		r.PatientsActive,
		r.Admissions,
		r.AdmissionRejections,
		r.Discharges,
		r.SnapshotOperations,
		r.SnapshotDuration,
		r.SnapshotBytes,
	)
	return r
}

// Registerer exposes the underlying registry for extra collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for export and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// SetPatientsActive sets the active patient gauge.
func (r *Registry) SetPatientsActive(n int) {
	r.PatientsActive.Set(float64(n))
}

// IncAdmission counts an accepted admission.
func (r *Registry) IncAdmission() {
	r.Admissions.Inc()
}

// IncRejection counts a rejected admission.
func (r *Registry) IncRejection(reason string) {
	r.AdmissionRejections.WithLabelValues(reason).Inc()
}

// IncDischarge counts a discharge.
func (r *Registry) IncDischarge() {
	r.Discharges.Inc()
}

// ObserveSnapshot records the outcome and duration of op started at start.
func (r *Registry) ObserveSnapshot(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.SnapshotOperations.WithLabelValues(op, result).Inc()
	r.SnapshotDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetSnapshotBytes records the size of the last written file of kind.
func (r *Registry) SetSnapshotBytes(kind string, n int64) {
	r.SnapshotBytes.WithLabelValues(kind).Set(float64(n))
}

// WriteText writes all metrics in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// WriteTextfile atomically writes all metrics to path for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
