package module

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/modkit/internal/value"
)

// EmergencyKey is the reserved key in both descriptors and configuration
// files.
const EmergencyKey = "emergency"

// Descriptor is a module's static declaration, usually read from module.desc.
type Descriptor = value.Map

// InstanceKey identifies one module instance among all loaded modules.
type InstanceKey struct {
	Module string
	ID     string
}

// String renders the key as "module@id".
func (k InstanceKey) String() string {
	return k.Module + "@" + k.ID
}

// ParseInstanceKey parses "module@id". Both halves must be non-empty and the
// key must hold exactly one "@".
func ParseInstanceKey(s string) (InstanceKey, error) {
	name, id, ok := strings.Cut(s, "@")
	if !ok || name == "" || id == "" || strings.Contains(id, "@") {
		return InstanceKey{}, fmt.Errorf("invalid instance key %q: want module@id", s)
	}
	return InstanceKey{Module: name, ID: id}, nil
}

// Module is one configured, not yet executed unit of work. Its identity,
// type and interface are fixed by the Factory; only the configuration can be
// reloaded. A Module is safe for concurrent use, including reads that overlap
// a Reload.
type Module struct {
	variant Variant

	name            string
	instanceID      string
	directory       string
	requiredModules []string
	maybeEmergency  bool

	// mu guards the fields a reload replaces.
	mu             sync.RWMutex
	configFileName string
	configuration  value.Map
	configPath     string
	emergency      bool
}

// Name returns the module name from the descriptor.
func (m *Module) Name() string { return m.name }

// InstanceID returns the id this instance was constructed with.
func (m *Module) InstanceID() string { return m.instanceID }

// InstanceKey returns name@instanceId.
func (m *Module) InstanceKey() InstanceKey {
	return InstanceKey{Module: m.name, ID: m.instanceID}
}

// Type returns the module type fixed by its variant.
func (m *Module) Type() Type { return m.variant.Type() }

// Interface returns the backend interface fixed by its variant.
func (m *Module) Interface() Interface { return m.variant.Interface() }

// Variant returns the backend-specific part of the module.
func (m *Module) Variant() Variant { return m.variant }

// Location returns the absolute module directory.
func (m *Module) Location() string { return m.directory }

// RequiredModules returns the names this module declares as prerequisites.
func (m *Module) RequiredModules() []string {
	return append([]string(nil), m.requiredModules...)
}

// ConfigFileName returns the file name the configuration was resolved from.
func (m *Module) ConfigFileName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configFileName
}

// ConfigPath returns the path the configuration was loaded from, or "" when
// no candidate file existed.
func (m *Module) ConfigPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

// ConfigurationMap returns a copy of the module's configuration.
func (m *Module) ConfigurationMap() value.Map {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.configuration == nil {
		return value.Map{}
	}
	return m.configuration.Clone()
}

// MaybeEmergency reports whether the descriptor allows emergency mode.
func (m *Module) MaybeEmergency() bool { return m.maybeEmergency }

// IsEmergency reports whether the module runs in emergency mode: the
// descriptor must allow it and the configuration must set emergency: true.
func (m *Module) IsEmergency() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emergency
}

// TypeString returns a human-readable label for the module type.
func (m *Module) TypeString() string {
	switch m.Type() {
	case Job:
		return "Job Module"
	case View:
		return "View Module"
	}
	return ""
}

// InterfaceString returns a human-readable label for the backend interface.
func (m *Module) InterfaceString() string {
	switch m.Interface() {
	case ProcessInterface:
		return "External process"
	case PythonInterface:
		return "Python (Boost.Python)"
	case PythonQtInterface:
		return "Python (experimental)"
	case QtPluginInterface:
		return "Qt Plugin"
	}
	return ""
}

// initFrom copies the descriptor fields shared by all variants, then lets the
// variant read its own.
func (m *Module) initFrom(d Descriptor) {
	m.name = d.String("name", "")
	m.maybeEmergency = d.Bool(EmergencyKey, false)
	m.requiredModules = d.Strings("requiredModules")
	m.variant.InitFrom(m, d)
}

// LoadConfigurationFile resolves configFileName through r and replaces the
// module's configuration. On error the previous configuration is kept.
func (m *Module) LoadConfigurationFile(ctx context.Context, r *Resolver, configFileName string) error {
	res, err := r.Load(ctx, m.name, configFileName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.configFileName = configFileName
	m.configPath = res.Path
	m.configuration = res.Config
	m.emergency = m.maybeEmergency && res.RawEmergency
	return nil
}

// Reload re-resolves the configuration file the module was built with.
func (m *Module) Reload(ctx context.Context, r *Resolver) error {
	return m.LoadConfigurationFile(ctx, r, m.ConfigFileName())
}
