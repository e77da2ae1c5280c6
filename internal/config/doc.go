// Package config provides the medrec configuration.
//
//   - spec.go: Config struct definition
//   - default.go: default values
//   - verify.go: validation (drivers, paths, levels)
//   - sanitize.go: masking of secrets for display
//   - file.go: default config path and writing a config file
//
// Configuration is loaded via internal/infra/confloader with priority
// Flag > Env (MEDREC_*) > File > Default.
package config
