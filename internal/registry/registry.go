package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vk/modkit/internal/ctxlog"
	"github.com/vk/modkit/internal/module"
)

var (
	// ErrUnknownModule is returned for an instance of an undiscovered module.
	ErrUnknownModule = errors.New("unknown module")
	// ErrDuplicateInstance is returned when an instance key is already taken.
	ErrDuplicateInstance = errors.New("duplicate module instance")
	// ErrNotLoaded is returned when an instance key has no module.
	ErrNotLoaded = errors.New("module instance not loaded")
	// ErrInvalidName is returned for a module name or instance id that is
	// empty or contains "@".
	ErrInvalidName = errors.New("invalid module name or instance id")
)

func validKeyPart(s string) bool {
	return s != "" && !strings.Contains(s, "@")
}

// Registry holds discovered descriptors and the module instances built from
// them.
type Registry struct {
	factory *module.Factory
	strict  bool

	mu          sync.RWMutex
	descriptors map[string]Discovered
	modules     map[string]*module.Module
	failed      map[string]error
}

// Option configures a Registry.
type Option func(*Registry)

// Strict makes LoadDirectory fail when any module fails to load, instead of
// logging and skipping it.
func Strict() Option {
	return func(r *Registry) { r.strict = true }
}

// New creates an empty registry that builds modules with f.
func New(f *module.Factory, opts ...Option) *Registry {
	r := &Registry{
		factory:     f,
		descriptors: make(map[string]Discovered),
		modules:     make(map[string]*module.Module),
		failed:      make(map[string]error),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadDirectory discovers every module below root and builds its default
// instance.
func (r *Registry) LoadDirectory(ctx context.Context, root string) error {
	logger := ctxlog.FromContext(ctx)

	found, discoverErr := Discover(ctx, root)
	// A nil slice with an error means the walk itself failed.
	if discoverErr != nil && found == nil {
		return discoverErr
	}

	var errs []error
	for _, d := range found {
		r.mu.Lock()
		if prev, exists := r.descriptors[d.Name]; exists {
			r.mu.Unlock()
			err := fmt.Errorf("module %q defined in both %s and %s", d.Name, prev.Dir, d.Dir)
			logger.Error("Duplicate module name.", "name", d.Name, "first", prev.Dir, "second", d.Dir)
			errs = append(errs, err)
			continue
		}
		r.descriptors[d.Name] = d
		r.mu.Unlock()

		if _, err := r.AddInstance(ctx, d.Name, d.Name, d.Name+".conf"); err != nil {
			errs = append(errs, err)
		}
	}

	r.mu.RLock()
	loaded := len(r.modules)
	r.mu.RUnlock()
	logger.Info("Modules loaded.", "discovered", len(found), "loaded", loaded, "failed", len(errs))

	if r.strict {
		return joinErrors(append(errs, discoverErr))
	}
	return nil
}

// AddInstance builds another instance of a discovered module.
func (r *Registry) AddInstance(ctx context.Context, moduleName, instanceID, configFileName string) (*module.Module, error) {
	key := module.InstanceKey{Module: moduleName, ID: instanceID}.String()
	ctx = ctxlog.With(ctx, "instance_key", key)
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	d, known := r.descriptors[moduleName]
	_, taken := r.modules[key]
	r.mu.RUnlock()

	if !validKeyPart(instanceID) {
		logger.Error("Bad module instance id.")
		return nil, r.fail(key, fmt.Errorf("%w: instance id %q", ErrInvalidName, instanceID))
	}
	if !known {
		logger.Error("Instance refers to an unknown module.")
		return nil, r.fail(key, fmt.Errorf("%w: %s", ErrUnknownModule, moduleName))
	}
	if taken {
		logger.Error("Module instance already loaded.")
		return nil, fmt.Errorf("%w: %s", ErrDuplicateInstance, key)
	}

	m, err := r.factory.FromDescriptor(ctx, d.Descriptor, instanceID, configFileName, d.Dir)
	if err != nil {
		return nil, r.fail(key, fmt.Errorf("load %s: %w", key, err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.modules[key]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateInstance, key)
	}
	r.modules[key] = m
	delete(r.failed, key)
	return m, nil
}

func (r *Registry) fail(key string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[key] = err
	return err
}

// Get returns the module with the given instance key.
func (r *Registry) Get(key string) (*module.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[key]
	return m, ok
}

// Modules returns all loaded modules ordered by instance key.
func (r *Registry) Modules() []*module.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*module.Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InstanceKey().String() < out[j].InstanceKey().String()
	})
	return out
}

// Descriptor returns the discovered descriptor for a module name.
func (r *Registry) Descriptor(name string) (Discovered, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

// Failed returns the errors of instances that could not be built, by
// instance key.
func (r *Registry) Failed() map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]error, len(r.failed))
	for k, v := range r.failed {
		out[k] = v
	}
	return out
}

// Reload re-reads the configuration of one instance.
func (r *Registry) Reload(ctx context.Context, key string) error {
	m, ok := r.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, key)
	}
	if err := m.Reload(ctx, r.factory.Resolver()); err != nil {
		ctxlog.FromContext(ctx).Error("Module configuration reload failed.", "instance_key", key, "error", err)
		return err
	}
	return nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
