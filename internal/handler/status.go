package handler

import (
	"net/http"
	"time"

	"safenetwork-api/pkg/response"
)

// StatusHandler serves the public status endpoint.
type StatusHandler struct {
	appName string
	version string
	started time.Time
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(appName, version string) *StatusHandler {
	return &StatusHandler{appName: appName, version: version, started: time.Now()}
}

// Status returns basic liveness info.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"status":  "ok",
		"name":    h.appName,
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
