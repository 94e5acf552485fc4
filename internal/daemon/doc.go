// Package daemon provides the orchestration for snackbard.
// It queues snackbar requests onto a single display surface, records them in
// the history store, plays level sounds, rate limits D-Bus senders and
// reloads the configuration when the file changes.
package daemon
