// Package client contains the transport and storage bootstrap of the
// Agrisonic client.
//
// # Gateway
//
// Gateway performs every call to the remote API. It attaches the current
// session token as the session-token cookie, stamps an X-Request-ID, bounds
// each call by the configured connect, write and read timeouts, and
// normalizes the {success, data, error} envelope into a Response.
//
// The gateway never writes to storage. When the server sets a new session
// cookie the value is returned in Response.IssuedToken and the caller
// decides whether to persist it. No call is retried.
//
// # Errors
//
// Transport failures are *common.NetworkError values whose Kind tells a
// timeout from a refused connection or a broken read. A response that is not
// an envelope at all yields common.ErrMalformedResponse. A well-formed
// envelope with success=false is not an error of Call; use Response.Err.
//
// # Storage
//
// InitDatabase opens the local SQLite file and applies the embedded goose
// migrations.
package client
