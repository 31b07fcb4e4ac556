package middleware

import (
	"net/http"
	"time"
)

// Timeout cancels the request context after d and answers 503 with a JSON
// body if the handler has not written a response yet.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = 15 * time.Second
	}

	message := `{"error":"request timed out","code":"REQUEST_TIMEOUT"}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, message)
	}
}
