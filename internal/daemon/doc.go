// Package daemon provides the main orchestration for toastd.
// It coordinates the stack manager, the D-Bus server, the audio player
// and configuration hot-reload.
package daemon
