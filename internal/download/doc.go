// Package download fetches the source video with yt-dlp and extracts a
// voice-ready audio track for the rest of the pipeline.
package download
