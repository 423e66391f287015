// Package connection wraps a single WebSocket connection to the monitoring
// endpoint.
//
// The Client:
//   - Dials with a handshake timeout and reports 401/403 as ErrUnauthorized
//   - Answers server pings and sends its own keepalive pings
//   - Publishes every inbound frame with its local receive time
//   - Reports read failures and stale connections on Errors
//
// Reconnection is the caller's job; a Client is used for one connection only.
package connection
