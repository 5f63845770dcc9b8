//go:build nopythonqt

package module

const withPythonQt = false
