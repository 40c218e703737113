package handlers

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prenv/catalog-api/internal/document"
	"github.com/prenv/catalog-api/pkg/metrics"
)

// ServiceName identifies this API in status payloads.
const ServiceName = "catalog-api"

// Health reports store liveness plus environment facts. The status is
// recomputed on every call. Both healthy and unhealthy answer 200; only a
// request that is cancelled while probing gets a 500.
func (h *StatusHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	connected := h.store.IsConnected(ctx)
	if connected {
		metrics.StoreUp.Set(1)
	} else {
		metrics.StoreUp.Set(0)
	}

	if err := ctx.Err(); err != nil {
		failure := gin.H{"status": "unhealthy", "error": err.Error(), "timestamp": document.FormatTime(h.now())}
		if wantsJSON(c) {
			c.JSON(http.StatusInternalServerError, failure)
			return
		}
		c.Render(http.StatusInternalServerError, render.HTML{
			Template: healthTemplate,
			Name:     "health",
			Data:     healthPage{Health: failure, Failed: true},
		})
		return
	}

	payload := h.healthPayload(connected)
	asJSON := wantsJSON(c)
	details, _ := strconv.ParseBool(c.Query("details"))
	if asJSON && !details {
		c.JSON(http.StatusOK, payload)
		return
	}

	info := h.additionalInfo(connected)
	stats := h.storeStats(c, connected)
	if asJSON {
		payload["additional_info"] = info
		payload["mongodb_stats"] = stats
		c.JSON(http.StatusOK, payload)
		return
	}
	c.Render(http.StatusOK, render.HTML{
		Template: healthTemplate,
		Name:     "health",
		Data:     healthPage{Health: payload, Info: info, Stats: stats, Healthy: connected},
	})
}

func (h *StatusHandler) healthPayload(connected bool) gin.H {
	status, database := "unhealthy", "disconnected"
	if connected {
		status, database = "healthy", "connected"
	}
	return gin.H{
		"status":      status,
		"database":    database,
		"environment": h.cfg.MongoDB.Database,
		"host":        h.cfg.MongoDB.Host,
		"port":        strconv.Itoa(h.cfg.MongoDB.Port),
		"pr_number":   h.cfg.Server.PRNumber,
		"debug":       h.cfg.Server.Debug,
		"timestamp":   document.FormatTime(h.now()),
	}
}

func (h *StatusHandler) additionalInfo(connected bool) gin.H {
	database := "disconnected"
	if connected {
		database = "connected"
	}
	return gin.H{
		"service":     ServiceName,
		"go_version":  runtime.Version(),
		"gin_version": gin.Version,
		"container_info": gin.H{
			"hostname": h.hostname,
			"platform": runtime.GOOS + "/" + runtime.GOARCH,
		},
		"services": gin.H{
			"mongodb": gin.H{
				"status":   database,
				"backend":  h.cfg.MongoDB.Backend,
				"host":     h.cfg.MongoDB.Host,
				"port":     strconv.Itoa(h.cfg.MongoDB.Port),
				"database": h.cfg.MongoDB.Database,
			},
			"api": gin.H{
				"status":      "running",
				"debug_mode":  h.cfg.Server.Debug,
				"environment": "PR-" + h.cfg.Server.PRNumber,
				"uptime":      h.now().Sub(h.started).Round(time.Second).String(),
			},
		},
	}
}

// storeStats lists collections and the server version. Failures are reported
// inside the result rather than failing the health check.
func (h *StatusHandler) storeStats(c *gin.Context, connected bool) gin.H {
	if !connected {
		return gin.H{}
	}
	ctx := c.Request.Context()
	db, ok := h.store.Database(ctx)
	if !ok {
		return gin.H{"error": "Database connection failed"}
	}
	names, err := db.ListCollectionNames(ctx)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	version, err := db.ServerVersion(ctx)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	return gin.H{"collections": names, "server_info": version, "database_name": db.Name()}
}
