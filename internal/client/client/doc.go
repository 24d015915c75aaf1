// Package client talks to the store backend and bootstraps the local
// database.
//
// # Overview
//
// The package provides:
//  1. The Client interface, the REST contract used by the services layer:
//     Login/Register, product list/create/update/delete, and Ping.
//  2. HTTPClient, its net/http implementation. It attaches the bearer token
//     from a TokenSource, tags every request with an X-Request-ID and maps
//     status codes onto sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// Match failures with errors.Is against ErrUnavailable, ErrUnauthorized and
// ErrRequestFailed. Non-2xx answers are *StatusError values carrying the
// status and the server's message.
//
// All network methods take a context and honour its cancellation.
package client
