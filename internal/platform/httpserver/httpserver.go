package httpserver

import (
	"net/http"
	"time"
)

const defaultReadHeaderTimeout = 5 * time.Second

// New builds the API server. The read-header timeout comes from config so
// deployments serving slow mobile links can widen it; a non-positive value
// falls back to the default.
func New(addr string, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
