//go:build !nopython

package module

const withPython = true
