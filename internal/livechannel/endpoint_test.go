package livechannel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		path  string
		token string
		want  string
	}{
		{"http", "http://localhost:8000", "", "abc", "ws://localhost:8000/ws/monitoring/?token=abc"},
		{"https", "https://api.click2print.example", "", "abc", "wss://api.click2print.example/ws/monitoring/?token=abc"},
		{"base with path", "https://example.com/api/", "", "t", "wss://example.com/api/ws/monitoring/?token=t"},
		{"already ws", "ws://localhost:9000", "/ws/other/", "t", "ws://localhost:9000/ws/other/?token=t"},
		{"path without slash", "http://h", "ws/monitoring/", "t", "ws://h/ws/monitoring/?token=t"},
		{"token is escaped", "http://h", "", "a b&c=d", "ws://h/ws/monitoring/?token=a+b%26c%3Dd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EndpointURL(tt.base, tt.path, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointURL_Invalid(t *testing.T) {
	for _, base := range []string{"", "ftp://example.com", "http://", "localhost:8000"} {
		_, err := EndpointURL(base, "", "t")
		assert.Error(t, err, base)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: time.Second}

	tests := []struct {
		attempt int
		nominal time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{50, time.Second},
	}

	for _, tt := range tests {
		for i := 0; i < 100; i++ {
			d := b.Delay(tt.attempt)
			assert.GreaterOrEqual(t, d, tt.nominal/2, "attempt %d", tt.attempt)
			assert.Less(t, d, tt.nominal*3/2, "attempt %d", tt.attempt)
		}
	}
}

func TestBackoff_Zero(t *testing.T) {
	assert.Equal(t, time.Duration(0), Backoff{}.Delay(3))
}
