package router

import (
	"sync"
	"testing"
	"time"

	"github.com/click2print/orderdesk/internal/connection"
)

func frame(data string) connection.TimestampedMessage {
	return connection.TimestampedMessage{Data: []byte(data), ReceivedAt: time.Now()}
}

func TestRouter_DispatchByType(t *testing.T) {
	r := New(nil, nil)

	var xCalls, yCalls int
	r.Subscribe("x", func(Message) { xCalls++ })
	r.Subscribe("y", func(Message) { yCalls++ })

	r.Dispatch(frame(`{"type":"y"}`))
	if xCalls != 0 {
		t.Errorf("x handler called %d times for a y frame, want 0", xCalls)
	}
	if yCalls != 1 {
		t.Errorf("y handler called %d times, want 1", yCalls)
	}

	r.Dispatch(frame(`{"type":"x"}`))
	r.Dispatch(frame(`{"type":"x"}`))
	if xCalls != 2 {
		t.Errorf("x handler called %d times, want 2", xCalls)
	}
}

func TestRouter_AllHandlersForTypeRun(t *testing.T) {
	r := New(nil, nil)

	var a, b int
	r.Subscribe("heartbeat_update", func(Message) { a++ })
	r.Subscribe("heartbeat_update", func(Message) { b++ })

	r.Dispatch(frame(`{"type":"heartbeat_update","device_id":"d1"}`))

	if a != 1 || b != 1 {
		t.Errorf("handlers called (%d, %d), want (1, 1)", a, b)
	}
}

func TestRouter_UnsubscribeTwice(t *testing.T) {
	r := New(nil, nil)

	var first, second int
	unsubFirst := r.Subscribe("x", func(Message) { first++ })
	r.Subscribe("x", func(Message) { second++ })

	unsubFirst()
	unsubFirst()

	r.Dispatch(frame(`{"type":"x"}`))

	if first != 0 {
		t.Errorf("removed handler called %d times", first)
	}
	if second != 1 {
		t.Errorf("remaining handler called %d times, want 1", second)
	}
}

func TestRouter_UnsubscribeLastHandlerRemovesType(t *testing.T) {
	r := New(nil, nil)

	unsub := r.Subscribe("screenshot_update", func(Message) {})
	r.Subscribe("device_status_change", func(Message) {})

	if got := r.Types(); len(got) != 2 {
		t.Fatalf("Types() = %v, want 2 entries", got)
	}

	unsub()

	got := r.Types()
	if len(got) != 1 || got[0] != "device_status_change" {
		t.Errorf("Types() = %v, want [device_status_change]", got)
	}
}

func TestRouter_DropsBadFrames(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantErrors  int64
		wantUnknown int64
	}{
		{"invalid json", `{"type":`, 1, 0},
		{"not an object", `[1,2,3]`, 1, 0},
		{"non-string type", `{"type":5}`, 1, 0},
		{"unknown type", `{"type":"nobody_listens"}`, 0, 1},
		{"missing type", `{"device_id":"d1"}`, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil, nil)
			called := false
			r.Subscribe("x", func(Message) { called = true })

			r.Dispatch(frame(tt.data))

			if called {
				t.Error("handler should not run")
			}
			stats := r.Stats()
			if stats.ParseErrors != tt.wantErrors {
				t.Errorf("ParseErrors = %d, want %d", stats.ParseErrors, tt.wantErrors)
			}
			if stats.UnknownMessages != tt.wantUnknown {
				t.Errorf("UnknownMessages = %d, want %d", stats.UnknownMessages, tt.wantUnknown)
			}
		})
	}
}

func TestRouter_RecoversHandlerPanic(t *testing.T) {
	r := New(nil, nil)

	after := 0
	r.Subscribe("x", func(Message) { panic("boom") })
	r.Subscribe("x", func(Message) { after++ })

	r.Dispatch(frame(`{"type":"x"}`))

	if after != 1 {
		t.Errorf("second handler called %d times, want 1", after)
	}
	if got := r.Stats().HandlerPanics; got != 1 {
		t.Errorf("HandlerPanics = %d, want 1", got)
	}
}

func TestRouter_HandlersGetOwnFields(t *testing.T) {
	r := New(nil, nil)

	var seen []string
	r.Subscribe("x", func(m Message) {
		m.Fields["device_id"] = "changed"
	})
	r.Subscribe("x", func(m Message) {
		seen = append(seen, m.Fields["device_id"].(string))
	})

	// Handler order is not defined, so run enough frames to hit both orders.
	for i := 0; i < 20; i++ {
		r.Dispatch(frame(`{"type":"x","device_id":"d1"}`))
	}
	for _, s := range seen {
		if s != "d1" {
			t.Fatalf("handler saw %q, want d1", s)
		}
	}
}

func TestRouter_ConcurrentSubscribe(t *testing.T) {
	r := New(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := r.Subscribe("x", func(Message) {})
			r.Dispatch(frame(`{"type":"x"}`))
			unsub()
		}()
	}
	wg.Wait()

	if got := r.Types(); len(got) != 0 {
		t.Errorf("Types() = %v, want empty", got)
	}
}

func TestMessage_Decode(t *testing.T) {
	r := New(nil, nil)

	type payload struct {
		DeviceID string    `json:"device_id"`
		Battery  int       `json:"battery"`
		Online   bool      `json:"online"`
		SeenAt   time.Time `json:"seen_at"`
	}

	var got payload
	var decodeErr error
	r.Subscribe("heartbeat_update", func(m Message) {
		decodeErr = m.Decode(&got)
	})

	r.Dispatch(frame(`{"type":"heartbeat_update","device_id":"d1","battery":"87","online":true,"seen_at":"2024-05-01T10:00:00Z"}`))

	if decodeErr != nil {
		t.Fatalf("Decode failed: %v", decodeErr)
	}
	want := payload{
		DeviceID: "d1",
		Battery:  87,
		Online:   true,
		SeenAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	if got.DeviceID != want.DeviceID || got.Battery != want.Battery || got.Online != want.Online || !got.SeenAt.Equal(want.SeenAt) {
		t.Errorf("Decode = %+v, want %+v", got, want)
	}
}
