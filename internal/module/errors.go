package module

import "errors"

var (
	// ErrMalformedDescriptor means the descriptor lacks "type" or "interface".
	ErrMalformedDescriptor = errors.New("malformed module descriptor")
	// ErrUnsupportedInterface means the (type, interface) pair has no row in
	// the dispatch table, or its row needs a disabled capability.
	ErrUnsupportedInterface = errors.New("unsupported module type or interface")
	// ErrInvalidDirectory means the module directory is missing or unreadable.
	ErrInvalidDirectory = errors.New("invalid module directory")
	// ErrConfigParse means a configuration file was opened but could not be parsed.
	ErrConfigParse = errors.New("module configuration parse error")
)
