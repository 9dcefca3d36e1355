// Package config reads the optional scratchkit.toml settings file. Values
// left out of the file stay at their zero value, so callers can layer the
// file between built-in defaults and command-line flags.
package config
