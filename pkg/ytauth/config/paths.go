package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "ytauth"
	defaultConfigFile    = "config.yaml"
)

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ytauth", defaultConfigFile)
}
