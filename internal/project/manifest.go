// Package project locates and parses the spvir.toml target manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest is a located, parsed spvir.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Target  TargetConfig  `toml:"target"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type TargetConfig struct {
	// Version is the SPIR-V version, e.g. "1.3".
	Version      string   `toml:"version"`
	Capabilities []string `toml:"capabilities"`
	Output       string   `toml:"output"`
	Cache        bool     `toml:"cache"`
}

// Find walks up from startDir looking for spvir.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "spvir.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load locates and parses the manifest. The second result is false when
// no manifest exists between startDir and the filesystem root.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}
