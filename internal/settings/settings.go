// Package settings holds the process-wide knobs the module loader consults:
// where bundled data lives, whether that location was overridden, whether
// debug mode is on and where system-wide overrides are kept.
//
// Values come from the environment (see Load) and may then be adjusted by the
// CLI before being handed to the loader. Nothing in this package is global.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Product names the system-wide configuration directory, /etc/<Product>.
const Product = "modkit"

// Settings is the configuration context for module loading.
type Settings struct {
	// DataDir is the bundled application data directory.
	DataDir string `env:"MODKIT_DATA_DIR" envDefault:"/usr/share/modkit"`
	// OverrideDataDir, when set, replaces DataDir and switches configuration
	// lookup to the single overridden location.
	OverrideDataDir string `env:"MODKIT_DATA_DIR_OVERRIDE"`
	// SystemConfigDir is where administrators drop overrides.
	SystemConfigDir string `env:"MODKIT_SYSTEM_CONFIG_DIR" envDefault:"/etc/modkit"`
	// Debug enables the development lookup under WorkDir/src/modules.
	Debug bool `env:"MODKIT_DEBUG"`
	// WorkDir defaults to the process working directory.
	WorkDir string `env:"MODKIT_WORK_DIR"`

	LogLevel  string `env:"MODKIT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MODKIT_LOG_FORMAT" envDefault:"text"`
}

// Load reads Settings from the environment.
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		s.WorkDir = wd
	}
	return &s, nil
}

// DataDirOverridden reports whether the data directory was overridden.
func (s *Settings) DataDirOverridden() bool {
	return s.OverrideDataDir != ""
}

// AppDataDir returns the effective, absolute application data directory.
func (s *Settings) AppDataDir() string {
	dir := s.DataDir
	if s.DataDirOverridden() {
		dir = s.OverrideDataDir
	}
	return absolute(dir)
}

// DebugMode reports whether debug mode is active.
func (s *Settings) DebugMode() bool {
	return s.Debug
}

// WorkingDir returns the directory debug lookups are relative to.
func (s *Settings) WorkingDir() string {
	return absolute(s.WorkDir)
}

// SystemDir returns the system-wide override directory.
func (s *Settings) SystemDir() string {
	if s.SystemConfigDir == "" {
		return filepath.Join(string(filepath.Separator), "etc", Product)
	}
	return s.SystemConfigDir
}

func absolute(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
