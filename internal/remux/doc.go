// Package remux assembles the final dubbed video by muxing the original
// video stream with the generated audio track.
package remux
