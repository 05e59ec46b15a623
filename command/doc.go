// Package command exposes go-command compatible handlers for the activity
// mutations: creating and deleting activities, adding and deleting replies,
// and toggling shares. Every handler runs the scope guard before touching the
// repository and emits the optional hooks after the transaction committed.
package command
