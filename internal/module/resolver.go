package module

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vk/modkit/internal/ctxlog"
	"github.com/vk/modkit/internal/document"
	"github.com/vk/modkit/internal/value"
)

// Environment is what the Resolver needs to know about the running process.
// settings.Settings implements it.
type Environment interface {
	DataDirOverridden() bool
	AppDataDir() string
	DebugMode() bool
	WorkingDir() string
	SystemDir() string
}

// Resolution is the outcome of a configuration lookup.
type Resolution struct {
	// Path is the file the configuration came from; empty if none existed.
	Path string
	// Config is never nil.
	Config value.Map
	// RawEmergency is true when Config sets emergency to boolean true. It
	// does not account for the descriptor's eligibility.
	RawEmergency bool
}

// Resolver locates and parses module configuration files.
type Resolver struct {
	env Environment
}

// NewResolver creates a Resolver reading its locations from env.
func NewResolver(env Environment) *Resolver {
	return &Resolver{env: env}
}

// Candidates lists the paths tried for configFileName, highest precedence
// first. An overridden data directory is the only candidate.
func (r *Resolver) Candidates(moduleName, configFileName string) []string {
	if r.env.DataDirOverridden() {
		return []string{filepath.Join(r.env.AppDataDir(), "modules", configFileName)}
	}

	var paths []string
	if r.env.DebugMode() {
		paths = append(paths, filepath.Join(r.env.WorkingDir(), "src", "modules", moduleName, configFileName))
	}
	paths = append(paths,
		filepath.Join(r.env.SystemDir(), "modules", configFileName),
		filepath.Join(r.env.AppDataDir(), "modules", configFileName),
	)
	return paths
}

// Load reads the first candidate that exists and opens. A missing file
// yields an empty configuration; an empty or non-map document does too, the
// latter with a warning. Only unparsable content is an error.
func (r *Resolver) Load(ctx context.Context, moduleName, configFileName string) (Resolution, error) {
	logger := ctxlog.FromContext(ctx)

	for _, path := range r.Candidates(moduleName, configFileName) {
		data, ok := readCandidate(ctx, path)
		if !ok {
			continue
		}
		logger.Debug("Loading module configuration.", "module", moduleName, "path", path)

		doc, err := document.Parse(path, data)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: %w", ErrConfigParse, err)
		}

		res := Resolution{Path: path, Config: value.Map{}}
		switch m := doc.(type) {
		case nil:
			// An empty file is a valid, empty configuration.
		case value.Map:
			res.Config = m
			emergency, isBool := m[EmergencyKey].(bool)
			res.RawEmergency = isBool && emergency
		default:
			logger.Warn("Bad module configuration format.", "module", moduleName, "path", path, "kind", fmt.Sprintf("%T", doc))
		}
		return res, nil
	}

	logger.Debug("No configuration file found.", "module", moduleName, "file", configFileName)
	return Resolution{Config: value.Map{}}, nil
}

// readCandidate returns the file's contents, or false when it does not exist,
// is not a regular file or cannot be opened or read.
func readCandidate(ctx context.Context, path string) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return nil, false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Could not read configuration file.", "path", path, "error", err)
		return nil, false
	}
	return data, true
}
