// Package voicesynth renders the translated transcript as dubbed speech
// through ElevenLabs, cloning the original speaker's voice when requested.
package voicesynth
