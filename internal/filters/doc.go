// Package filters provides the registry of display helpers that views use to
// render values. The registry is constructed explicitly and passed to the
// rendering layer rather than living in a process-wide global.
package filters
