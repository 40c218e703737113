package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prenv/catalog-api/internal/systemlog"
)

const readyTimeout = 3 * time.Second

// Ready returns 200 only when the critical dependencies answer: the document
// store, and Redis when the rate limiter depends on it.
func (h *StatusHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	ready := true
	deps := map[string]bool{}

	deps["store"] = h.store.IsConnected(ctx)
	if !deps["store"] {
		ready = false
	}
	if h.redis != nil {
		deps["redis"] = h.redis(ctx) == nil
		if !deps["redis"] {
			ready = false
		}
	}
	// informational only
	deps["system_log"] = h.logs != nil

	uptime := h.now().Sub(h.started).Round(time.Second).String()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
}

// SystemLogs returns recent system log entries, newest first.
func (h *StatusHandler) SystemLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(systemlog.DefaultLimit)))
	if err != nil {
		limit = systemlog.DefaultLimit
	}
	if h.logs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": systemlog.ErrDisabled.Error()})
		return
	}
	entries, err := h.logs.Recent(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, systemlog.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "logs": entries, "count": len(entries)})
}
