// Package metrics provides Prometheus metrics for the order desk.
//
// Key metrics:
//   - Store updates by operation and persist failures
//   - Live channel state, connect attempts and reconnects
//   - Frames received by type and dropped by reason
//   - Sends dropped while the channel is not open
//
// A nil *Metrics is valid and records nothing.
package metrics
