// Package registry owns the modules loaded for one session.
//
// Discovery walks a modules root for module.desc files, one per module
// directory. Every discovered module gets a default instance whose id is the
// module name and whose configuration file is <name>.conf; further instances
// of the same module can be added explicitly or from an instances document.
// Instances are keyed by their instance key (name@id), which must be unique.
//
// The registry only stores what the module factory builds. It does not order
// modules by their declared dependencies.
package registry
