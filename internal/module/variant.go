package module

import (
	"path/filepath"
	"time"
)

// Variant is the backend-specific part of a Module. Each row of the dispatch
// table constructs one Variant; InitFrom runs after the module's identity and
// directory are set, so it may read them.
type Variant interface {
	Type() Type
	Interface() Interface
	InitFrom(m *Module, d Descriptor)
}

// resolveIn joins a relative file name onto the module directory.
func resolveIn(dir, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// pluginFile reads "load", defaulting to lib<name>.so next to the descriptor.
func pluginFile(m *Module, d Descriptor) string {
	load := d.String("load", "")
	if load == "" {
		load = "lib" + m.Name() + ".so"
	}
	return resolveIn(m.Location(), load)
}

// ViewPlugin is a view loaded as an in-process plugin.
type ViewPlugin struct {
	PluginFile string
}

func (*ViewPlugin) Type() Type           { return View }
func (*ViewPlugin) Interface() Interface { return QtPluginInterface }

func (v *ViewPlugin) InitFrom(m *Module, d Descriptor) {
	v.PluginFile = pluginFile(m, d)
}

// JobPlugin is a job loaded as an in-process plugin.
type JobPlugin struct {
	PluginFile string
}

func (*JobPlugin) Type() Type           { return Job }
func (*JobPlugin) Interface() Interface { return QtPluginInterface }

func (j *JobPlugin) InitFrom(m *Module, d Descriptor) {
	j.PluginFile = pluginFile(m, d)
}

// DefaultProcessTimeout applies when a process job declares no timeout.
const DefaultProcessTimeout = 30 * time.Second

// ProcessJob is a job run as an external command.
type ProcessJob struct {
	Command    string
	WorkingDir string
	Timeout    time.Duration
	InChroot   bool
}

func (*ProcessJob) Type() Type           { return Job }
func (*ProcessJob) Interface() Interface { return ProcessInterface }

func (p *ProcessJob) InitFrom(m *Module, d Descriptor) {
	p.Command = d.String("command", "")
	p.WorkingDir = m.Location()
	p.Timeout = DefaultProcessTimeout
	if secs := d.Int("timeout", 0); secs > 0 {
		p.Timeout = time.Duration(secs) * time.Second
	}
	p.InChroot = d.Bool("chroot", false)
}

// DefaultScript is the entry point of scripted modules that name none.
const DefaultScript = "main.py"

// PythonJob is a job run by the embedded scripting interpreter.
type PythonJob struct {
	Script     string
	WorkingDir string
}

func (*PythonJob) Type() Type           { return Job }
func (*PythonJob) Interface() Interface { return PythonInterface }

func (p *PythonJob) InitFrom(m *Module, d Descriptor) {
	p.WorkingDir = m.Location()
	p.Script = resolveIn(m.Location(), d.String("script", DefaultScript))
}

// PythonQtView is a view scripted through the interpreter's UI bindings.
type PythonQtView struct {
	Script     string
	WorkingDir string
}

func (*PythonQtView) Type() Type           { return View }
func (*PythonQtView) Interface() Interface { return PythonQtInterface }

func (p *PythonQtView) InitFrom(m *Module, d Descriptor) {
	p.WorkingDir = m.Location()
	p.Script = resolveIn(m.Location(), d.String("script", DefaultScript))
}
