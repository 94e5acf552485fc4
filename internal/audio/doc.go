// Package audio plays the sound attached to a snackbar level.
// It uses the beep library to decode WAV, OGG and MP3 files, caches the
// decoded samples and drops them again when a file changes on disk.
package audio
