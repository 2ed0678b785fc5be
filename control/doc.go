// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration and debug introspection for buffer registries.
//
// Provides concurrent-safe primitives including:
//   - Snapshot config reads with reload listeners
//   - Live retuning of group limits from config keys
//   - Debug probes exposing group accounting and dumps
package control
