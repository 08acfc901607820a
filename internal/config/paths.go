package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// baseDirOf returns the absolute directory of a config file, or "" when it
// cannot be resolved
func baseDirOf(configFile string) string {
	abs, err := filepath.Abs(configFile)
	if err != nil {
		return ""
	}
	return filepath.Dir(abs)
}

// resolvePaths makes the data directory, bulletin manifest and log file
// absolute. Relative data and log paths are taken relative to the directory
// of the config file, or the working directory when no file was loaded.
// Dataset files stay relative to Data.Dir and are resolved by DataFile.
func (c *Config) resolvePaths() error {
	base := c.baseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	c.Data.Dir = resolveAgainst(base, c.Data.Dir)
	if c.Data.Bulletins != "" {
		c.Data.Bulletins = resolveAgainst(c.Data.Dir, c.Data.Bulletins)
	}
	if c.Logging.FilePath != "" {
		c.Logging.FilePath = resolveAgainst(base, c.Logging.FilePath)
	}

	slog.Debug("Resolved configuration paths",
		slog.String("base_dir", base),
		slog.String("data_dir", c.Data.Dir),
		slog.String("bulletins", c.Data.Bulletins))

	return nil
}

// DataFile resolves a dataset file name against the data directory
func (d DataConfig) DataFile(name string) string {
	return resolveAgainst(d.Dir, name)
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
