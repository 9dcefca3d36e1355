// Package registry provides the central "glue" for the module system.
//
// The Registry stores every file format plugin, every Feature and every
// canonical block type known to the process. Format modules populate it at
// startup through the Module interface; afterwards it is read-only and safe
// to share between goroutines.
//
// # Registration order
//
// Registration order is load-bearing. The first format to register a block
// type provides its default spelling, the first block type to claim a
// command wins exact-command lookups, and loose text lookups that match
// several canonical types are only accepted when every candidate's default
// command maps back to the first one. Modules must therefore always be
// registered in the same order.
//
// During application startup, the registry is populated and then validated to
// ensure that every format's vocabulary is internally consistent and every
// declared feature exists, preventing a wide class of conversion errors.
package registry
