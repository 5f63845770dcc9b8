package app

import (
	"errors"

	"github.com/vk/modkit/internal/settings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ModulesPath is searched recursively for module.desc files.
	ModulesPath string
	// InstancesPath optionally names a document listing extra instances.
	InstancesPath string
	// Strict fails the load when any module fails.
	Strict bool

	Settings *settings.Settings
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModulesPath == "" {
		return nil, errors.New("ModulesPath is a required configuration field and cannot be empty")
	}
	if cfg.Settings == nil {
		return nil, errors.New("Settings is a required configuration field")
	}
	return &cfg, nil
}
