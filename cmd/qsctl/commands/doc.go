// Package commands defines the qsctl CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init       Generate a fresh identity and initialize the local keystore
//   - fingerprint Print the local identity's signing-key fingerprint
//   - register   Publish public keys to the local user projection (stands in
//     for the external registration endpoint during local development)
//   - friend     Manage friend requests and the friendship list
//   - send       Encrypt and relay a message to a friend
//   - recv       Listen for incoming messages and decrypt them
//
// # Implementation
//
// The root command builds a dependency graph (stores, services, token
// verifier) before any subcommand runs, so handlers share one app context.
package commands
