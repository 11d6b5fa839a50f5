package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/craftlink/craftlink-backend/internal/infrastructure/cache"
	"github.com/craftlink/craftlink-backend/pkg/metrics"
)

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	db    *sqlx.DB
	redis cache.RedisClient
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sqlx.DB, redis cache.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health is the liveness probe
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// Ready is the readiness probe: the service is ready when its database and
// redis are both reachable
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := h.redis.Ping(c.Request.Context()); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	stats := h.db.Stats()
	metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
	metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
	metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}
