// Package livechannel keeps an authenticated WebSocket open to the monitoring
// endpoint and fans inbound frames out to per-type handlers.
//
// A Channel moves idle → connecting → open → closed and back to connecting
// after an exponential backoff with jitter. Close (or cancelling the context
// given to Start) moves it to stopped, which is terminal.
//
// Without a bearer token no socket is opened: ErrAuthenticationFailed is
// published on Errors and the channel waits in closed until Reconnect.
package livechannel
