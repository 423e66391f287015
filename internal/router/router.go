package router

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/click2print/orderdesk/internal/connection"
	"github.com/click2print/orderdesk/internal/metrics"
)

// Router is the dispatch table from message type to the handlers interested
// in it.
type Router struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler
	nextID   uint64

	received    atomic.Int64
	routed      atomic.Int64
	parseErrors atomic.Int64
	unknown     atomic.Int64
	panics      atomic.Int64
}

// New creates an empty Router. m may be nil.
func New(logger *slog.Logger, m *metrics.Metrics) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		logger:   logger,
		metrics:  m,
		handlers: make(map[string]map[uint64]Handler),
	}
}

// Subscribe registers h for eventType. Every call is a separate registration.
// The returned function removes exactly this registration; calling it again
// does nothing.
func (r *Router) Subscribe(eventType string, h Handler) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	set, ok := r.handlers[eventType]
	if !ok {
		set = make(map[uint64]Handler)
		r.handlers[eventType] = set
	}
	set[id] = h
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			set, ok := r.handlers[eventType]
			if !ok {
				return
			}
			delete(set, id)
			if len(set) == 0 {
				delete(r.handlers, eventType)
			}
		})
	}
}

// Types returns the event types that currently have handlers, sorted.
func (r *Router) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

// Dispatch parses one frame and invokes every handler registered for its
// type. Malformed frames are logged and dropped; frames nobody listens for
// are dropped silently.
func (r *Router) Dispatch(raw connection.TimestampedMessage) {
	r.received.Add(1)

	var envelope messageEnvelope
	var fields map[string]any
	if err := json.Unmarshal(raw.Data, &envelope); err != nil {
		r.malformed(raw, err)
		return
	}
	if err := json.Unmarshal(raw.Data, &fields); err != nil {
		r.malformed(raw, err)
		return
	}

	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.handlers[envelope.Type]))
	for _, h := range r.handlers[envelope.Type] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.unknown.Add(1)
		r.metrics.FrameDropped("unknown_type")
		r.logger.Debug("skipping message type", "type", envelope.Type)
		return
	}

	r.routed.Add(1)
	r.metrics.FrameReceived(envelope.Type)

	for _, h := range handlers {
		r.invoke(h, Message{
			Type:       envelope.Type,
			Raw:        raw.Data,
			Fields:     maps.Clone(fields),
			ReceivedAt: raw.ReceivedAt,
		})
	}
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	return Stats{
		MessagesReceived: r.received.Load(),
		MessagesRouted:   r.routed.Load(),
		ParseErrors:      r.parseErrors.Load(),
		UnknownMessages:  r.unknown.Load(),
		HandlerPanics:    r.panics.Load(),
	}
}

func (r *Router) malformed(raw connection.TimestampedMessage, err error) {
	r.parseErrors.Add(1)
	r.metrics.FrameDropped("malformed")
	r.logger.Warn("dropping malformed frame", "error", err, "bytes", len(raw.Data))
}

func (r *Router) invoke(h Handler, msg Message) {
	defer func() {
		if p := recover(); p != nil {
			r.panics.Add(1)
			r.logger.Error("message handler panicked", "type", msg.Type, "panic", p)
		}
	}()
	h(msg)
}
