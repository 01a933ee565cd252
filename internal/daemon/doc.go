// Package daemon hosts the long-running dubbing service: it enforces
// single-instance execution with a lock file, fails over sessions left
// in flight by a previous run, and serves the HTTP API that the CLI and
// the web frontend talk to.
package daemon
