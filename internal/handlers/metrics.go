package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/services"
	"github.com/huangang/feedbacklens/pkg/logger"
	"gorm.io/gorm"
)

// MetricsHandler renders gauges in the Prometheus text exposition format.
type MetricsHandler struct {
	db        *gorm.DB
	reviews   *services.ReviewService
	usage     *services.AIUsageService
	queue     services.TaskQueue
	startTime time.Time
}

func NewMetricsHandler(db *gorm.DB, reviews *services.ReviewService, usage *services.AIUsageService, queue services.TaskQueue) *MetricsHandler {
	return &MetricsHandler{
		db:        db,
		reviews:   reviews,
		usage:     usage,
		queue:     queue,
		startTime: time.Now(),
	}
}

func (h *MetricsHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "feedbacklens_uptime_seconds", "Time since server start in seconds", time.Since(h.startTime).Seconds())
	writeGauge(&b, "feedbacklens_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "feedbacklens_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))
	writeGauge(&b, "feedbacklens_gc_runs_total", "Total number of GC runs", float64(m.NumGC))

	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "feedbacklens_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "feedbacklens_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
	}

	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "feedbacklens_queue_async_enabled", "Whether alerts go through Redis (1=yes, 0=no)", queueAsync)

	if analytics, err := h.reviews.Analytics(); err == nil {
		writeGauge(&b, "feedbacklens_reviews_total", "Total number of stored reviews", float64(analytics.TotalReviews))
		writeGauge(&b, "feedbacklens_reviews_recent", "Reviews created in the last 24 hours", float64(analytics.RecentReviews))
		writeGauge(&b, "feedbacklens_reviews_average_rating", "Mean star rating over all reviews", analytics.AverageRating)
	} else {
		logger.Warnf("[Metrics] review analytics unavailable: %v", err)
	}

	if usage, err := h.usage.StatsSince(time.Now().Add(-24 * time.Hour)); err == nil {
		writeGauge(&b, "feedbacklens_ai_calls_24h", "AI API calls in the last 24 hours", float64(usage.TotalCalls))
		writeGauge(&b, "feedbacklens_ai_fallbacks_24h", "AI calls answered with static fallback content in the last 24 hours", float64(usage.FallbackCount))
		writeGauge(&b, "feedbacklens_ai_avg_latency_ms_24h", "Mean AI call latency in the last 24 hours", usage.AvgLatencyMs)
	} else {
		logger.Warnf("[Metrics] AI usage unavailable: %v", err)
	}

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
