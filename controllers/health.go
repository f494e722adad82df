package controllers

import (
	"context"
	"net/http"
	"time"

	"seva-kendra/logger"
	"seva-kendra/utils"

	"go.uber.org/zap"
)

// HealthController reports whether the database is reachable
type HealthController struct {
	Ping    func(ctx context.Context) error
	Timeout time.Duration
}

// Health answers 200 when the database responds to a ping, 503 otherwise
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	timeout := hc.Timeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	if err := hc.Ping(ctx); err != nil {
		logger.FromContext(r.Context()).Error("Health check failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
