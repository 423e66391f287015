package router

import (
	"time"

	"github.com/mitchellh/mapstructure"
)

// Handler receives one decoded frame. Handlers run on the read goroutine and
// should return quickly.
type Handler func(Message)

// Message is a decoded inbound frame.
type Message struct {
	Type       string
	Raw        []byte
	Fields     map[string]any
	ReceivedAt time.Time
}

// Decode copies the frame fields into v, matching json tag names. Numbers and
// strings are converted loosely and RFC 3339 strings become time.Time.
func (m Message) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:           v,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m.Fields)
}

// Stats contains runtime statistics.
type Stats struct {
	MessagesReceived int64
	MessagesRouted   int64
	ParseErrors      int64
	UnknownMessages  int64
	HandlerPanics    int64
}

// messageEnvelope is used for fast type extraction.
type messageEnvelope struct {
	Type string `json:"type"`
}
