package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orderdesk"

// Metrics holds every collector the order desk records to.
type Metrics struct {
	storeUpdates   *prometheus.CounterVec
	persistFailed  prometheus.Counter
	channelState   *prometheus.GaugeVec
	connectAttempt prometheus.Counter
	reconnects     prometheus.Counter
	framesReceived *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec
	sendsDropped   prometheus.Counter
	authFailures   prometheus.Counter

	mu        sync.Mutex
	lastState string
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storeUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "updates_total",
			Help:      "Order draft mutations by operation.",
		}, []string{"op"}),
		persistFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Writes of the order draft that did not reach storage.",
		}),
		channelState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "state",
			Help:      "1 for the live channel's current state, 0 otherwise.",
		}, []string{"state"}),
		connectAttempt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "connect_attempts_total",
			Help:      "Socket dial attempts.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "reconnects_total",
			Help:      "Reconnects scheduled after the socket closed.",
		}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "frames_received_total",
			Help:      "Frames received by event type.",
		}, []string{"type"}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "frames_dropped_total",
			Help:      "Frames dropped by reason.",
		}, []string{"reason"}),
		sendsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "sends_dropped_total",
			Help:      "Outbound messages dropped because the socket was not open.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "auth_failures_total",
			Help:      "Connects abandoned for a missing or rejected token.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.storeUpdates,
			m.persistFailed,
			m.channelState,
			m.connectAttempt,
			m.reconnects,
			m.framesReceived,
			m.framesDropped,
			m.sendsDropped,
			m.authFailures,
		)
	}
	return m
}

// StoreUpdated counts one draft mutation.
func (m *Metrics) StoreUpdated(op string) {
	if m == nil {
		return
	}
	m.storeUpdates.WithLabelValues(op).Inc()
}

// PersistFailed counts one failed write.
func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailed.Inc()
}

// SetChannelState marks state as current and clears the previous one.
func (m *Metrics) SetChannelState(state string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastState != "" && m.lastState != state {
		m.channelState.WithLabelValues(m.lastState).Set(0)
	}
	m.channelState.WithLabelValues(state).Set(1)
	m.lastState = state
}

func (m *Metrics) ConnectAttempt() {
	if m == nil {
		return
	}
	m.connectAttempt.Inc()
}

func (m *Metrics) Reconnected() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// FrameReceived counts a frame that was routed to its handlers.
func (m *Metrics) FrameReceived(eventType string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(eventType).Inc()
}

// FrameDropped counts a frame that was not routed, e.g. "malformed" or "unknown_type".
func (m *Metrics) FrameDropped(reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SendDropped() {
	if m == nil {
		return
	}
	m.sendsDropped.Inc()
}

func (m *Metrics) AuthFailed() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}
