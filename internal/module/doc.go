// Package module turns module descriptors into constructed, configured
// modules.
//
// A descriptor names a module type ("job" or "view") and an interface, the
// backend that would run it ("qtplugin", "process", "python", "pythonqt").
// The Factory looks the pair up in a closed dispatch table, checks the module
// directory, assigns the instance identity and asks the Resolver for the
// module's configuration file. Construction is all-or-nothing: any failure
// yields a nil *Module and an error wrapping one of ErrMalformedDescriptor,
// ErrUnsupportedInterface, ErrInvalidDirectory or ErrConfigParse.
//
// The Resolver searches for a configuration file in precedence order:
//
//  1. <override data dir>/modules/<file>, only when the data dir is overridden
//  2. <working dir>/src/modules/<module>/<file>, in debug mode
//  3. <system dir>/modules/<file>
//  4. <data dir>/modules/<file>
//
// The first candidate that opens wins. Missing files are not errors.
//
// Nothing here executes a module; the variants only capture what their
// backend would need.
package module
