// Package monitoring tracks agent devices from the live monitoring feed.
package monitoring

// Event types pushed on the monitoring socket.
const (
	EventHeartbeat    = "heartbeat_update"
	EventScreenshot   = "screenshot_update"
	EventStatusChange = "device_status_change"
)

// EventTypes lists every event type the Board consumes.
var EventTypes = []string{EventHeartbeat, EventScreenshot, EventStatusChange}

// Device statuses reported by the agents.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
	StatusIdle    = "IDLE"
	StatusPaused  = "PAUSED"
)

// Heartbeat is the resource snapshot an agent sends periodically.
type Heartbeat struct {
	CPUPercent   float64 `json:"cpu_percent"`
	MemPercent   float64 `json:"mem_percent"`
	ActiveWindow string  `json:"active_window"`
	IsLocked     bool    `json:"is_locked"`
	Timestamp    string  `json:"timestamp"`
}

// Screenshot points at the latest screen capture thumbnail.
type Screenshot struct {
	ThumbURL string `json:"thumb_url"`
	TakenAt  string `json:"taken_at"`
}

type HeartbeatUpdate struct {
	DeviceID  string    `json:"device_id"`
	Heartbeat Heartbeat `json:"heartbeat"`
}

type ScreenshotUpdate struct {
	DeviceID   string     `json:"device_id"`
	Screenshot Screenshot `json:"screenshot"`
}

type DeviceStatusChange struct {
	DeviceID string `json:"device_id"`
	Status   string `json:"status"`
}
