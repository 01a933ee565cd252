// Package catalog holds the static dubbing vocabulary: supported target
// languages, voice selection modes, and voice style presets.
//
// All language and voice validation is consolidated here so the API
// gateway, the CLI, and the synthesis stage agree on one source of truth.
package catalog
