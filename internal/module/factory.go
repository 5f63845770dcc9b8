package module

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/modkit/internal/ctxlog"
)

// Constructor builds an empty Variant for one dispatch table row.
type Constructor func() Variant

type dispatchKey struct {
	typ  string
	intf string
}

type row struct {
	key      dispatchKey
	ctor     Constructor
	requires func(Capabilities) bool
}

func always(Capabilities) bool { return true }

// builtinRows is the closed set of supported (type, interface) pairs.
// "viewmodule" is an accepted spelling of "view".
var builtinRows = []row{
	{dispatchKey{"view", "qtplugin"}, func() Variant { return &ViewPlugin{} }, always},
	{dispatchKey{"viewmodule", "qtplugin"}, func() Variant { return &ViewPlugin{} }, always},
	{dispatchKey{"view", "pythonqt"}, func() Variant { return &PythonQtView{} }, func(c Capabilities) bool { return c.PythonQt }},
	{dispatchKey{"viewmodule", "pythonqt"}, func() Variant { return &PythonQtView{} }, func(c Capabilities) bool { return c.PythonQt }},
	{dispatchKey{"job", "qtplugin"}, func() Variant { return &JobPlugin{} }, always},
	{dispatchKey{"job", "process"}, func() Variant { return &ProcessJob{} }, always},
	{dispatchKey{"job", "python"}, func() Variant { return &PythonJob{} }, func(c Capabilities) bool { return c.Python }},
}

// Factory constructs modules from descriptors.
type Factory struct {
	resolver *Resolver
	caps     Capabilities
	extra    []row
	table    map[dispatchKey]Constructor
	disabled map[dispatchKey]bool
}

// Option configures a Factory.
type Option func(*Factory)

// WithCapabilities replaces DefaultCapabilities.
func WithCapabilities(c Capabilities) Option {
	return func(f *Factory) { f.caps = c }
}

// WithVariant adds a dispatch row for (typ, intf). It cannot replace a
// built-in row.
func WithVariant(typ, intf string, ctor Constructor) Option {
	return func(f *Factory) {
		f.extra = append(f.extra, row{dispatchKey{typ, intf}, ctor, always})
	}
}

// NewFactory creates a Factory whose configuration lookups go through r.
func NewFactory(r *Resolver, opts ...Option) *Factory {
	f := &Factory{resolver: r, caps: DefaultCapabilities()}
	for _, opt := range opts {
		opt(f)
	}

	f.table = make(map[dispatchKey]Constructor)
	f.disabled = make(map[dispatchKey]bool)
	for _, rw := range builtinRows {
		if rw.requires(f.caps) {
			f.table[rw.key] = rw.ctor
		} else {
			f.disabled[rw.key] = true
		}
	}
	for _, rw := range f.extra {
		if _, taken := f.table[rw.key]; taken || f.disabled[rw.key] {
			panic(fmt.Sprintf("module: dispatch row %s/%s already defined", rw.key.typ, rw.key.intf))
		}
		f.table[rw.key] = rw.ctor
	}
	return f
}

// Resolver returns the resolver the factory loads configuration through.
func (f *Factory) Resolver() *Resolver { return f.resolver }

// Supported lists the enabled "type/interface" pairs in sorted order.
func (f *Factory) Supported() []string {
	out := make([]string, 0, len(f.table))
	for k := range f.table {
		out = append(out, k.typ+"/"+k.intf)
	}
	sort.Strings(out)
	return out
}

// FromDescriptor constructs the module described by d. The instance id is
// taken verbatim, configuration is looked up as configFileName and the
// module directory must exist and be readable. On any failure the error is
// logged and the returned module is nil.
func (f *Factory) FromDescriptor(ctx context.Context, d Descriptor, instanceID, configFileName, moduleDirectory string) (*Module, error) {
	logger := ctxlog.FromContext(ctx).With("instance_id", instanceID)

	typ := d.String("type", "")
	intf := d.String("interface", "")
	if typ == "" || intf == "" {
		logger.Error("Bad module descriptor format.", "type", typ, "interface", intf)
		return nil, fmt.Errorf("%w: %s: type and interface are required", ErrMalformedDescriptor, instanceID)
	}

	key := dispatchKey{typ, intf}
	ctor, ok := f.table[key]
	if !ok {
		if f.disabled[key] {
			logger.Error("Module interface is not supported in this build.", "type", typ, "interface", intf)
			return nil, fmt.Errorf("%w: %s: %s/%s is disabled in this build", ErrUnsupportedInterface, instanceID, typ, intf)
		}
		logger.Error("Bad module type or interface.", "type", typ, "interface", intf)
		return nil, fmt.Errorf("%w: %s: %s/%s", ErrUnsupportedInterface, instanceID, typ, intf)
	}

	dir, err := validateDirectory(moduleDirectory)
	if err != nil {
		logger.Error("Bad module directory.", "directory", moduleDirectory, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, instanceID, err)
	}

	m := &Module{
		variant:    ctor(),
		instanceID: instanceID,
		directory:  dir,
	}
	m.initFrom(d)

	if err := m.LoadConfigurationFile(ctx, f.resolver, configFileName); err != nil {
		logger.Error("Module configuration could not be parsed.", "config_file", configFileName, "error", err)
		return nil, err
	}

	logger.Debug("Module constructed.", "instance_key", m.InstanceKey().String(), "type", typ, "interface", intf, "config_path", m.ConfigPath())
	return m, nil
}

// validateDirectory returns the absolute form of dir if it is a readable
// directory.
func validateDirectory(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("no directory given")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	d, err := os.Open(abs)
	if err != nil {
		return "", err
	}
	defer d.Close()

	info, err := d.Stat()
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	if _, err := d.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s is not readable: %w", abs, err)
	}
	return abs, nil
}
