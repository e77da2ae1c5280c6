// Package metric provides Prometheus metrics for medrec.
//
//   - prometheus.go: registry, record and snapshot metrics, text export
//   - collector.go: archive size collector
//
// medrec has no listener, so metrics are written in the text exposition
// format to a node_exporter textfile when the process exits.
package metric
