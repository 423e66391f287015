package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.StoreUpdated("update")
		m.PersistFailed()
		m.SetChannelState("open")
		m.ConnectAttempt()
		m.Reconnected()
		m.FrameReceived("heartbeat_update")
		m.FrameDropped("malformed")
		m.SendDropped()
		m.AuthFailed()
	})
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.StoreUpdated("update")
	m.StoreUpdated("update")
	m.StoreUpdated("reset")
	m.PersistFailed()
	m.FrameReceived("screenshot_update")
	m.FrameDropped("malformed")
	m.SendDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeUpdates.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeUpdates.WithLabelValues("reset")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesReceived.WithLabelValues("screenshot_update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesDropped.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sendsDropped))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_ChannelState(t *testing.T) {
	m := New(nil)

	m.SetChannelState("connecting")
	m.SetChannelState("open")

	assert.Equal(t, 0.0, testutil.ToFloat64(m.channelState.WithLabelValues("connecting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.channelState.WithLabelValues("open")))

	m.SetChannelState("open")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.channelState.WithLabelValues("open")))
}
