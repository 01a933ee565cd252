// Package media wraps the ffmpeg operations the dubbing pipeline needs:
// extracting a mono voice-ready WAV from a downloaded video and remuxing
// the original video with a dubbed audio track.
package media
