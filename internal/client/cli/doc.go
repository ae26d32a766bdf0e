// Package cli is the interactive Agrisonic command-line client.
//
// It wires configuration, the local store, the API gateway and the feature
// services, and runs a REPL on top of them. Typical flow: restore the stored
// session, start a watcher that follows session changes, then execute user
// commands until "exit".
//
// Commands:
//   - signup / verify / resend: create and confirm an account
//   - login / logout / me: session and profile
//   - forgot: password reset by emailed code
//   - weather / forecast / predict / market: feature lookups
//   - lang / status: local settings and state
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
