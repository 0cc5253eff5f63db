// Package state keeps per-user conversation modes in memory and dispatches
// free-text input to the handler registered for the user's current mode.
// Modes are transient and do not survive a restart.
package state
