// Package proc launches the child processes of a script and reports how they
// ended.
//
// A child receives exactly three descriptors: the stdin and stdout endpoints
// it was given (or the orchestrator's own streams) and the orchestrator's
// stderr. Every other descriptor, pipe endpoints of sibling commands
// included, is close-on-exec and never reaches the child.
//
// Pipes are allocated as a set with OpenPipes and released with a single
// idempotent Close. Callers defer Close right after allocation and call it
// again once every command is launched; each endpoint is closed exactly once
// in the orchestrator either way.
//
// The package targets Unix-like systems.
package proc
