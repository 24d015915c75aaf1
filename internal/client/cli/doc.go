// Package cli provides the interactive store admin command-line client.
//
// It wires configuration, the persisted session, the REST API client and the
// product services into a REPL. Typical flow: restore the session from the
// local database, start a background connectivity watcher, and execute user
// commands until exit.
//
// Key features:
//   - Register / Login / Logout, whoami
//   - List and search products (case-insensitive name filter)
//   - Add / Edit products through the product editor
//   - Delete with explicit confirmation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
