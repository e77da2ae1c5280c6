package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/yndnr/medrec/internal/infra/confloader"
)

// Load builds the configuration from defaults, the file at path, the
// MEDREC_* environment and flags, in increasing priority. A missing file
// at the default path is not an error; a missing explicit path is.
func Load(path string, flags map[string]any) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		path = ""
	}

	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.LoadDefaults(Default()); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
