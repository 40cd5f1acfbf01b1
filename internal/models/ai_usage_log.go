package models

import "time"

// Enrichment call kinds recorded in AIUsageLog.Kind.
const (
	UsageKindResponse = "response"
	UsageKindSummary  = "summary"
	UsageKindActions  = "actions"
)

// AIUsageLog records each LLM API call made while enriching a review.
type AIUsageLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ReviewID         *string   `gorm:"size:36;index" json:"review_id"`
	Kind             string    `gorm:"size:20;index" json:"kind"`
	Provider         string    `gorm:"size:50" json:"provider"`
	Model            string    `gorm:"size:100" json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	LatencyMs        int64     `json:"latency_ms"`
	Success          bool      `json:"success"`
	Fallback         bool      `json:"fallback"` // static content replaced the model output
	ErrorMessage     string    `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (AIUsageLog) TableName() string { return "ai_usage_logs" }
