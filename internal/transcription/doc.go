// Package transcription converts the extracted audio track into text using
// the Deepgram prerecorded API.
package transcription
