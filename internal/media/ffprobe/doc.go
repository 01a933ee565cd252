// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The download stage uses it to verify that a fetched video has an audio
// stream and to fill in duration when the downloader does not report one.
// The remux stage uses it to check that the combined output kept both its
// video and audio streams.
package ffprobe
