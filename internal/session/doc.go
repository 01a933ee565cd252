// Package session persists dubbing sessions and guards their lifecycle.
//
// A session is the tracked unit of one dubbing request. Exactly one
// orchestrator goroutine mutates a given session while pollers read
// snapshots concurrently; the store keeps every read consistent and every
// write atomic, and refuses transitions out of terminal states.
package session
