// Package app wires the module loader together. It builds the logger, the
// resolver, the factory and the registry from one Config, decoupled from any
// specific entrypoint like a CLI.
package app
