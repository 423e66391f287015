package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/click2print/orderdesk/internal/connection"
	"github.com/click2print/orderdesk/internal/router"
)

func send(r *router.Router, frame string) {
	r.Dispatch(connection.TimestampedMessage{Data: []byte(frame), ReceivedAt: time.Now()})
}

func TestBoard_AppliesEvents(t *testing.T) {
	r := router.New(nil, nil)

	var changes []string
	b := NewBoard(nil, func(eventType string, d Device) {
		changes = append(changes, eventType+":"+d.ID)
	})
	b.Attach(r)

	send(r, `{"type":"device_status_change","device_id":"pc-2","status":"ONLINE"}`)
	send(r, `{"type":"heartbeat_update","device_id":"pc-1","heartbeat":{"cpu_percent":12.5,"mem_percent":"40","active_window":"Illustrator","is_locked":false,"timestamp":"2024-05-01T10:00:00Z"}}`)
	send(r, `{"type":"screenshot_update","device_id":"pc-1","screenshot":{"thumb_url":"/media/t1.jpg","taken_at":"2024-05-01T10:00:05Z"}}`)
	send(r, `{"type":"device_status_change","device_id":"pc-1","status":"IDLE"}`)

	devices := b.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "pc-1", devices[0].ID)
	assert.Equal(t, "pc-2", devices[1].ID)

	pc1, ok := b.Device("pc-1")
	require.True(t, ok)
	assert.Equal(t, StatusIdle, pc1.Status)
	require.NotNil(t, pc1.Heartbeat)
	assert.Equal(t, Heartbeat{
		CPUPercent:   12.5,
		MemPercent:   40,
		ActiveWindow: "Illustrator",
		Timestamp:    "2024-05-01T10:00:00Z",
	}, *pc1.Heartbeat)
	require.NotNil(t, pc1.Screenshot)
	assert.Equal(t, "/media/t1.jpg", pc1.Screenshot.ThumbURL)
	assert.False(t, pc1.UpdatedAt.IsZero())

	assert.Equal(t, []string{
		"device_status_change:pc-2",
		"heartbeat_update:pc-1",
		"screenshot_update:pc-1",
		"device_status_change:pc-1",
	}, changes)
}

func TestBoard_IgnoresBadEvents(t *testing.T) {
	r := router.New(nil, nil)
	b := NewBoard(nil, nil)
	b.Attach(r)

	send(r, `{"type":"heartbeat_update","heartbeat":{"cpu_percent":1}}`)
	send(r, `{"type":"heartbeat_update","device_id":"pc-1","heartbeat":"oops"}`)

	assert.Empty(t, b.Devices())
}

func TestBoard_Detach(t *testing.T) {
	r := router.New(nil, nil)
	b := NewBoard(nil, nil)

	detach := b.Attach(r)
	assert.ElementsMatch(t, EventTypes, r.Types())

	detach()
	assert.Empty(t, r.Types())

	send(r, `{"type":"device_status_change","device_id":"pc-1","status":"ONLINE"}`)
	assert.Empty(t, b.Devices())
}
