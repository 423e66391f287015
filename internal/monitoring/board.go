package monitoring

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/click2print/orderdesk/internal/router"
)

// Subscriber is anything frames can be subscribed on, e.g. a live channel.
type Subscriber interface {
	Subscribe(eventType string, h router.Handler) (unsubscribe func())
}

// Device is the latest known state of one agent.
type Device struct {
	ID         string      `json:"id"`
	Status     string      `json:"status,omitempty"`
	Heartbeat  *Heartbeat  `json:"heartbeat,omitempty"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Board keeps the latest state per device.
type Board struct {
	logger   *slog.Logger
	onChange func(eventType string, d Device)

	mu      sync.RWMutex
	devices map[string]Device
}

// NewBoard creates an empty Board. onChange, if not nil, is called after every
// applied event with the updated device.
func NewBoard(logger *slog.Logger, onChange func(eventType string, d Device)) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		logger:   logger,
		onChange: onChange,
		devices:  make(map[string]Device),
	}
}

// Attach subscribes the board to every monitoring event type on sub. The
// returned function detaches it.
func (b *Board) Attach(sub Subscriber) (detach func()) {
	unsubs := []func(){
		sub.Subscribe(EventHeartbeat, b.handleHeartbeat),
		sub.Subscribe(EventScreenshot, b.handleScreenshot),
		sub.Subscribe(EventStatusChange, b.handleStatusChange),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Devices returns every known device ordered by ID.
func (b *Board) Devices() []Device {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Device, 0, len(b.devices))
	for _, id := range slices.Sorted(maps.Keys(b.devices)) {
		out = append(out, b.devices[id])
	}
	return out
}

// Device returns one device.
func (b *Board) Device(id string) (Device, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.devices[id]
	return d, ok
}

func (b *Board) handleHeartbeat(msg router.Message) {
	var ev HeartbeatUpdate
	if !b.decode(msg, &ev) || ev.DeviceID == "" {
		return
	}
	hb := ev.Heartbeat
	b.update(msg, ev.DeviceID, func(d *Device) { d.Heartbeat = &hb })
}

func (b *Board) handleScreenshot(msg router.Message) {
	var ev ScreenshotUpdate
	if !b.decode(msg, &ev) || ev.DeviceID == "" {
		return
	}
	shot := ev.Screenshot
	b.update(msg, ev.DeviceID, func(d *Device) { d.Screenshot = &shot })
}

func (b *Board) handleStatusChange(msg router.Message) {
	var ev DeviceStatusChange
	if !b.decode(msg, &ev) || ev.DeviceID == "" {
		return
	}
	b.update(msg, ev.DeviceID, func(d *Device) { d.Status = ev.Status })
}

func (b *Board) decode(msg router.Message, v any) bool {
	if err := msg.Decode(v); err != nil {
		b.logger.Warn("ignoring monitoring event", "type", msg.Type, "error", err)
		return false
	}
	return true
}

func (b *Board) update(msg router.Message, id string, fn func(*Device)) {
	b.mu.Lock()
	d, ok := b.devices[id]
	if !ok {
		d = Device{ID: id}
	}
	fn(&d)
	d.UpdatedAt = msg.ReceivedAt
	b.devices[id] = d
	b.mu.Unlock()

	if b.onChange != nil {
		b.onChange(msg.Type, d)
	}
}
