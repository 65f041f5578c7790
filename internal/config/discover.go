package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ErrNotFound indicates that no configuration file exists in any searched location
var ErrNotFound = errors.New("no configuration file found")

// LocalFileNames are looked up, in order, in the working directory
var LocalFileNames = []string{"mxn-svg.yaml", "mxn-svg.yml", "mxn-svg.json", "mxn-svg.jsonc"}

// userConfigFile is relative to the XDG config directories
const userConfigFile = "mxn-svg/config.yaml"

// Find returns the configuration file to load. An explicit path must exist.
// Otherwise the working directory is searched first and then the XDG config
// directories. ErrNotFound is returned when nothing exists.
func Find(explicit, workDir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	for _, name := range LocalFileNames {
		candidate := filepath.Join(workDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if path, err := xdg.SearchConfigFile(userConfigFile); err == nil {
		return path, nil
	}

	return "", ErrNotFound
}
