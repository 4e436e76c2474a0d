package openai

import (
	"net/http"
	"time"
)

// newHTTPClient builds the transport for a provider with a hard per-call
// deadline. timeoutSec comes from config; zero or negative falls back to
// the provider's default.
func newHTTPClient(timeoutSec int, fallback time.Duration) *http.Client {
	timeout := fallback
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return &http.Client{Timeout: timeout}
}
