package device

import (
	"net"
	"net/http"
	"time"

	"github.com/dixieflatline76/Glint/config"
)

const (
	dialTimeout           = 5 * time.Second
	responseHeaderTimeout = 5 * time.Second
	keepAlive             = 30 * time.Second
)

// UserAgentTransport wraps an http.RoundTripper and adds a User-Agent header.
type UserAgentTransport struct {
	http.RoundTripper
	UserAgent string
}

// RoundTrip executes a single HTTP transaction, adding the User-Agent header.
func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("User-Agent", t.UserAgent)
	return t.RoundTripper.RoundTrip(clonedReq)
}

// NewHTTPClient returns the client used to talk to the display hardware.
// The devices sit on the local network, so timeouts are short.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: config.DeviceTimeout,
		Transport: &UserAgentTransport{
			RoundTripper: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: keepAlive,
				}).DialContext,
				ResponseHeaderTimeout: responseHeaderTimeout,
			},
			UserAgent: config.AppName + "/" + config.AppVersion,
		},
	}
}
