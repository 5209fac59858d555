// Package audio turns caption text into speech and plays it back.
//
// A Provider renders text in a given language to an audio file (OpenAI TTS
// or espeak-ng). The Synthesizer owns the lifecycle of those files: each
// Speak call creates a uniquely named artifact in a temp directory, plays it
// with a Player and removes it again on every path.
package audio
