// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags and environment into the application's configuration and
// renders the loaded modules.
package cli
