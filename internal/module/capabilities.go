package module

// Capabilities switches the optional scripting backends on or off. A disabled
// capability removes its rows from the dispatch table.
type Capabilities struct {
	Python   bool
	PythonQt bool
}

// DefaultCapabilities reports what this build supports. Build with the
// nopython or nopythonqt tags to drop a backend.
func DefaultCapabilities() Capabilities {
	return Capabilities{Python: withPython, PythonQt: withPythonQt}
}
