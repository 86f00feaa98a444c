// Package main runs the realtime TCP relay: a newline-terminated JSON event
// bus that authenticates each connection against a bearer token, enforces
// the friendship list as the delivery ACL, verifies sender signatures
// before forwarding, and never persists an envelope past the handler call
// that forwarded or rejected it.
//
// Flags
//
//	-listen      TCP address to accept connections on (default 127.0.0.1:8443)
//	-home        directory holding the user and friendship JSON projections
//	-jwt-secret  HMAC secret bearer tokens are verified against (required)
//	-rate        max send_message/send_file events per second per user
//	-burst       burst size for the per-user event rate limit
//
// Behaviour
//
//   - A user may hold more than one live connection (multiple devices);
//     events are fanned out to every connection in that user's room.
//   - The relay never sees a recipient's secret keys: sender authentication
//     is done by reconstructing the signed payload and checking the
//     signature, not by decrypting.
//   - A recipient with no live connection gets a recipient_offline error
//     back to the sender; there is no server-side offline queue.
package main
