package utils

import (
	"encoding/json"
	"net/http"

	"seva-kendra/apperrors"

	"go.uber.org/zap"
)

// WriteJSON writes v as the JSON response body with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

// WriteError writes the failure envelope {"success": false, "error": msg}
func WriteError(w http.ResponseWriter, err error) {
	apiErr := apperrors.From(err)
	WriteJSON(w, apiErr.StatusCode, map[string]interface{}{
		"success": false,
		"error":   apiErr.Message,
	})
}
