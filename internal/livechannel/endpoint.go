package livechannel

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultPath is the monitoring socket path under the API base.
const DefaultPath = "/ws/monitoring/"

// EndpointURL derives the socket URL from the HTTP API base: http becomes ws,
// https becomes wss, path is appended and the token goes in the query.
func EndpointURL(base, path, token string) (string, error) {
	base = strings.TrimSpace(base)
	if strings.HasPrefix(base, "http") {
		base = "ws" + strings.TrimPrefix(base, "http")
	}

	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api base: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("api base %q: unsupported scheme %q", base, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("api base %q: missing host", base)
	}

	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path += path

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
