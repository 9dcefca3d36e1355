// Package app contains the core application logic. It wires the logger, the
// registry and the format modules together and offers the project-level
// operations (load, save, convert) used by the command line, decoupled from
// any specific entrypoint.
package app
