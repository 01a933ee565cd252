// Package pipeline advances dubbing sessions through the configured
// processing stages.
//
// The Orchestrator launches one goroutine per submitted session and walks it
// through download, transcription, translation, voice synthesis, and final
// assembly, persisting a consistent status/progress snapshot after every
// transition so pollers always observe monotonic progress. Stage execution
// runs under per-stage and per-session watchdog timeouts; any failure marks
// the session failed with the stage name and a human-readable message while
// freezing the progress it had reached.
//
// Add new lifecycle stages by extending StageSet, updating the session status
// enums, and teaching the orchestrator the new transition; this package is
// the authoritative home for that coordination logic.
package pipeline
