package registry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/modkit/internal/ctxlog"
	"github.com/vk/modkit/internal/document"
	"github.com/vk/modkit/internal/value"
)

// Instance declares one extra instance of a discovered module.
type Instance struct {
	ID     string
	Module string
	Config string
}

// ParseInstances reads the "instances" list of a settings document. Each
// entry needs "id" and "module"; "config" defaults to <module>.conf.
func ParseInstances(path string, data []byte) ([]Instance, error) {
	doc, err := document.ParseMap(path, data)
	if err != nil {
		return nil, err
	}

	raw, ok := doc["instances"].([]any)
	if !ok {
		if doc.Has("instances") && doc["instances"] != nil {
			return nil, fmt.Errorf("%s: instances must be a list", path)
		}
		return nil, nil
	}

	out := make([]Instance, 0, len(raw))
	for i, item := range raw {
		entry, ok := item.(value.Map)
		if !ok {
			return nil, fmt.Errorf("%s: instance %d is not a map", path, i)
		}
		inst := Instance{
			ID:     entry.String("id", ""),
			Module: entry.String("module", ""),
			Config: entry.String("config", ""),
		}
		if inst.ID == "" || inst.Module == "" {
			return nil, fmt.Errorf("%s: instance %d needs id and module", path, i)
		}
		if inst.Config == "" {
			inst.Config = inst.Module + ".conf"
		}
		out = append(out, inst)
	}
	return out, nil
}

// LoadInstances adds every instance declared in the document at path. All
// instances are attempted; the returned error joins the failures.
func (r *Registry) LoadInstances(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read instances: %w", err)
	}
	instances, err := ParseInstances(path, data)
	if err != nil {
		return err
	}

	var errs []error
	for _, inst := range instances {
		if _, err := r.AddInstance(ctx, inst.Module, inst.ID, inst.Config); err != nil {
			errs = append(errs, err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Instances file processed.", "path", path, "declared", len(instances), "failed", len(errs))
	return errors.Join(errs...)
}
