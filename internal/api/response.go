package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/rnc"
)

// envelope is the body of every /company response.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	// Retryable is set when the same request may succeed later.
	Retryable bool `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// writeError maps a resolution failure onto its status and error code.
// Internal failures keep their detail out of the response body.
func writeError(w http.ResponseWriter, err error) {
	kind := rnc.KindOf(err)
	msg := err.Error()
	if kind == rnc.KindInternal {
		msg = "internal error"
	}
	writeJSON(w, kind.HTTPStatus(), envelope{
		Success:   false,
		Error:     kind.Code(),
		Message:   msg,
		Retryable: kind.Retryable(),
	})
}
