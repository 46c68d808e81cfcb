package response

import (
	"encoding/json"
	"net/http"

	"safenetwork-api/pkg/apierror"
)

// JSON sends a JSON response with the given status code. The payload is
// written as-is: action results are flat objects, not wrapped in an envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Error sends an error as `{"error": message}` using the error's own
// status code.
func Error(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	JSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Message})
}

// ActionError sends an action failure. The action endpoint keeps the flat
// historical contract: unresolved identity is 401, every other failure is
// reported as 400 regardless of kind.
func ActionError(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	status := http.StatusBadRequest
	if apiErr.StatusCode == http.StatusUnauthorized {
		status = http.StatusUnauthorized
	}
	JSON(w, status, map[string]string{"error": apiErr.Message})
}
