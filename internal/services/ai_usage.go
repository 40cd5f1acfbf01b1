package services

import (
	"time"

	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/pkg/logger"
	"gorm.io/gorm"
)

// AIUsageService manages AI usage tracking and statistics.
type AIUsageService struct {
	db *gorm.DB
}

func NewAIUsageService(db *gorm.DB) *AIUsageService {
	return &AIUsageService{db: db}
}

// Record saves a usage log entry asynchronously.
func (s *AIUsageService) Record(log *models.AIUsageLog) {
	go func() {
		if err := s.Save(log); err != nil {
			logger.Warnf("[AIUsage] Failed to record usage: %v", err)
		}
	}()
}

// Save writes a usage log entry and waits for the result.
func (s *AIUsageService) Save(log *models.AIUsageLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	return s.db.Create(log).Error
}

// UsageStats holds aggregated AI usage statistics.
type UsageStats struct {
	TotalCalls       int64   `json:"total_calls"`
	TotalTokens      int64   `json:"total_tokens"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	SuccessRate      float64 `json:"success_rate"`
	SuccessCount     int64   `json:"success_count"`
	FailureCount     int64   `json:"failure_count"`
	FallbackCount    int64   `json:"fallback_count"`
}

const usageStatsColumns = "COUNT(*) as total_calls, " +
	"COALESCE(SUM(total_tokens), 0) as total_tokens, " +
	"COALESCE(SUM(prompt_tokens), 0) as prompt_tokens, " +
	"COALESCE(SUM(completion_tokens), 0) as completion_tokens, " +
	"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
	"COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) as success_count, " +
	"COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) as failure_count, " +
	"COALESCE(SUM(CASE WHEN fallback THEN 1 ELSE 0 END), 0) as fallback_count"

// GetStats returns aggregated usage statistics for the given date range
// (YYYY-MM-DD, both ends inclusive, either may be empty).
func (s *AIUsageService) GetStats(startDate, endDate string) (*UsageStats, error) {
	return s.scanStats(s.dateRange(startDate, endDate))
}

// StatsSince aggregates calls made at or after since.
func (s *AIUsageService) StatsSince(since time.Time) (*UsageStats, error) {
	return s.scanStats(s.db.Model(&models.AIUsageLog{}).Where("created_at >= ?", since.UTC()))
}

func (s *AIUsageService) scanStats(query *gorm.DB) (*UsageStats, error) {
	var stats UsageStats
	if err := query.Select(usageStatsColumns).Scan(&stats).Error; err != nil {
		return nil, err
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalCalls) * 100
	}
	return &stats, nil
}

// DailyUsage holds usage data for a single day.
type DailyUsage struct {
	Date          string `json:"date"`
	Calls         int    `json:"calls"`
	TotalTokens   int    `json:"total_tokens"`
	AvgLatencyMs  int    `json:"avg_latency_ms"`
	FallbackCount int    `json:"fallback_count"`
}

// GetDailyTrend returns daily aggregated usage for charting.
func (s *AIUsageService) GetDailyTrend(startDate, endDate string) ([]DailyUsage, error) {
	var results []DailyUsage
	err := s.dateRange(startDate, endDate).Select(
		"DATE(created_at) as date, " +
			"COUNT(*) as calls, " +
			"COALESCE(SUM(total_tokens), 0) as total_tokens, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
			"COALESCE(SUM(CASE WHEN fallback THEN 1 ELSE 0 END), 0) as fallback_count",
	).Group("DATE(created_at)").Order("date ASC").Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []DailyUsage{}
	}
	return results, nil
}

// ProviderUsage holds usage data grouped by provider, model and call kind.
type ProviderUsage struct {
	Provider      string  `json:"provider"`
	Model         string  `json:"model"`
	Kind          string  `json:"kind"`
	Calls         int     `json:"calls"`
	TotalTokens   int     `json:"total_tokens"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	SuccessRate   float64 `json:"success_rate"`
	FallbackCount int     `json:"fallback_count"`
}

// GetProviderBreakdown returns usage grouped by provider, model and kind.
func (s *AIUsageService) GetProviderBreakdown(startDate, endDate string) ([]ProviderUsage, error) {
	var results []ProviderUsage
	err := s.dateRange(startDate, endDate).Select(
		"provider, model, kind, " +
			"COUNT(*) as calls, " +
			"COALESCE(SUM(total_tokens), 0) as total_tokens, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
			"COALESCE(AVG(CASE WHEN success THEN 100.0 ELSE 0.0 END), 0) as success_rate, " +
			"COALESCE(SUM(CASE WHEN fallback THEN 1 ELSE 0 END), 0) as fallback_count",
	).Group("provider, model, kind").Order("calls DESC").Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []ProviderUsage{}
	}
	return results, nil
}

// CleanupBefore deletes usage logs older than the given time.
func (s *AIUsageService) CleanupBefore(before time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", before.UTC()).Delete(&models.AIUsageLog{})
	return result.RowsAffected, result.Error
}

func (s *AIUsageService) dateRange(startDate, endDate string) *gorm.DB {
	query := s.db.Model(&models.AIUsageLog{})
	if startDate != "" {
		query = query.Where("created_at >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("created_at <= ?", endDate+" 23:59:59.999999999")
	}
	return query
}
