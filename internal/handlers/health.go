package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports database reachability and queue mode.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
	llm   services.TextGenerator
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue, llm services.TextGenerator) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, llm: llm}
}

// CheckHealth answers 200 when the database responds and 503 otherwise.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	queueMode := "in-process"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	components := gin.H{
		"database":   dbStatus,
		"queue_mode": queueMode,
	}
	if h.llm != nil {
		components["llm_provider"] = h.llm.Provider()
		components["llm_model"] = h.llm.Model()
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"service":    "feedbacklens",
		"components": components,
	})
}
