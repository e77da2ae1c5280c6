// Package output renders command results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned tables, built directly or by reflection
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: progress animation for slow backup targets
package output
