package metric

import "github.com/prometheus/client_golang/prometheus"

// ArchiveSizer reports on-disk sizes of the discharge archive.
type ArchiveSizer interface {
	Size() (lsm, vlog int64)
}

// ArchiveCollector exports the archive size at scrape time.
type ArchiveCollector struct {
	sizer ArchiveSizer
	desc  *prometheus.Desc
}

// NewArchiveCollector creates a collector for sizer.
func NewArchiveCollector(sizer ArchiveSizer) *ArchiveCollector {
	return &ArchiveCollector{
		sizer: sizer,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "archive", "size_bytes"),
			"Discharge archive size on disk by part.",
			[]string{"part"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *ArchiveCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *ArchiveCollector) Collect(ch chan<- prometheus.Metric) {
	lsm, vlog := c.sizer.Size()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(lsm), "lsm")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(vlog), "vlog")
}

// RegisterArchive adds an archive size collector to r.
func (r *Registry) RegisterArchive(sizer ArchiveSizer) error {
	return r.registry.Register(NewArchiveCollector(sizer))
}
