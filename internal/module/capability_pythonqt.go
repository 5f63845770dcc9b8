//go:build !nopythonqt

package module

const withPythonQt = true
