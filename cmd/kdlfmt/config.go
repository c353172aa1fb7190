package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional .kdlfmt.yaml shape. Indent defaults to four
// spaces (kdl.defaultSerializeConfig's own default) when the file is
// absent or the field is left blank.
type fileConfig struct {
	Indent string `yaml:"indent"`
}

// loadConfig looks for .kdlfmt.yaml starting at dir and walking up to the
// filesystem root, returning the first one found. A missing file is not
// an error: fmt/check/watch just fall back to the default indent.
func loadConfig(dir string) (fileConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return fileConfig{}, err
	}
	for {
		candidate := filepath.Join(dir, ".kdlfmt.yaml")
		data, err := os.ReadFile(candidate)
		if err == nil {
			var cfg fileConfig
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fileConfig{}, err
			}
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return fileConfig{}, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return fileConfig{}, nil
		}
		dir = parent
	}
}
