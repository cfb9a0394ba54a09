// Package audio provides notification sound playback functionality.
// It uses the beep library to play WAV, OGG, and MP3 audio files
// with volume control and per-kind sound configuration.
package audio
