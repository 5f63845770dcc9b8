package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/modkit/internal/ctxlog"
	"github.com/vk/modkit/internal/document"
	"github.com/vk/modkit/internal/fsutil"
	"github.com/vk/modkit/internal/module"
)

// DescriptorFile is the per-module descriptor file name.
const DescriptorFile = "module.desc"

// Discovered is a descriptor found on disk.
type Discovered struct {
	Name       string
	Dir        string
	Path       string
	Descriptor module.Descriptor
}

// Discover finds and parses every descriptor below root. A descriptor without
// a name takes its directory's name; a name containing "@" is rejected. Descriptors that fail to parse are
// returned in the error, the rest are still returned.
func Discover(ctx context.Context, root string) ([]Discovered, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovering module descriptors...", "path", root)

	paths, err := fsutil.FindFilesNamed(root, DescriptorFile)
	if err != nil {
		logger.Error("Failed to walk modules directory", "path", root, "error", err)
		return nil, fmt.Errorf("discover modules in %s: %w", root, err)
	}
	if len(paths) == 0 {
		logger.Warn("No module descriptors found in path", "path", root)
		return nil, nil
	}

	found := make([]Discovered, 0, len(paths))
	var errs []error
	for _, path := range paths {
		d, err := readDescriptor(path)
		if err != nil {
			logger.Error("Bad module descriptor file.", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}

		dir := filepath.Dir(path)
		name := d.String("name", "")
		if name == "" {
			name = filepath.Base(dir)
			d = d.Clone()
			d["name"] = name
		} else if name != filepath.Base(dir) {
			logger.Warn("Module name differs from its directory name.", "name", name, "dir", dir)
		}

		if !validKeyPart(name) {
			logger.Error("Bad module name.", "name", name, "path", path)
			errs = append(errs, fmt.Errorf("%w: module name %q in %s", ErrInvalidName, name, path))
			continue
		}

		found = append(found, Discovered{Name: name, Dir: dir, Path: path, Descriptor: d})
	}

	logger.Debug("Module descriptors discovered.", "count", len(found), "failed", len(errs))
	return found, joinErrors(errs)
}

func readDescriptor(path string) (module.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := document.ParseMap(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
