// Command dubstudio is the CLI companion to dubstudiod. It submits
// dubbing sessions, polls their progress, runs the synchronous
// transcribe and translate flows, and inspects the daemon's catalog and
// health over the HTTP API.
package main
