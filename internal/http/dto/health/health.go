// Package health contains the /readyz response shape.
package health

import "time"

// ComponentStatus is one dependency's state: "ok", "error" or "disabled".
type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response is "ready" or "unavailable"; a failing optional component yields "degraded".
type Response struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
}
