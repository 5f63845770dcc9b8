package module

// Type classifies what a module contributes.
type Type int

const (
	Job Type = iota + 1
	View
)

// String returns the descriptor spelling of t.
func (t Type) String() string {
	switch t {
	case Job:
		return "job"
	case View:
		return "view"
	}
	return ""
}

// Interface identifies the backend a module runs on.
type Interface int

const (
	QtPluginInterface Interface = iota + 1
	ProcessInterface
	PythonInterface
	PythonQtInterface
)

// String returns the descriptor spelling of i.
func (i Interface) String() string {
	switch i {
	case QtPluginInterface:
		return "qtplugin"
	case ProcessInterface:
		return "process"
	case PythonInterface:
		return "python"
	case PythonQtInterface:
		return "pythonqt"
	}
	return ""
}
