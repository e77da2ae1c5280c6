// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Values passed with LoadMap (command-line flags)
//  2. Environment variables (MEDREC_*)
//  3. The YAML configuration file
//  4. Defaults passed with LoadDefaults
//
// Environment names are resolved against the keys known after defaults are
// loaded, so MEDREC_STORAGE_DATA_DIR maps to storage.data_dir rather than
// storage.data.dir. The Watcher reports writes to the configuration file.
package confloader
