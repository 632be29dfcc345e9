// Package watch re-runs the conversion whenever the OpenShift source tree
// changes. Events are debounced, runs never overlap, and each run prints a
// one-line status plus the destinations that changed since the previous run.
package watch
