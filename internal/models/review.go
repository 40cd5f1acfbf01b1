package models

import (
	"encoding/json"
	"time"
)

// Rating bounds and review text limit shared by validation and storage.
const (
	MinRating             = 1
	MaxRating             = 5
	MaxReviewTextLength   = 5000
	MaxRecommendedActions = 3
)

// ReviewMetadata records how the enrichment was produced.
type ReviewMetadata struct {
	ProcessingTime int64  `json:"processingTime"` // milliseconds spent in enrichment
	LLMModel       string `gorm:"size:100" json:"llmModel"`
}

// Review is a customer rating plus its AI-generated enrichment. Rows are
// only ever inserted.
type Review struct {
	ID                 string         `gorm:"primaryKey;size:36" json:"id"`
	Rating             int            `gorm:"not null;index:idx_reviews_rating_created,priority:1" json:"rating"`
	ReviewText         string         `gorm:"type:text;not null" json:"reviewText"`
	AIResponse         string         `gorm:"type:text;not null" json:"aiResponse"`
	AISummary          string         `gorm:"type:text;not null" json:"aiSummary"`
	RecommendedActions []string       `gorm:"type:text;serializer:json" json:"recommendedActions"`
	Metadata           ReviewMetadata `gorm:"embedded;embeddedPrefix:metadata_" json:"metadata"`
	CreatedAt          time.Time      `gorm:"index;index:idx_reviews_rating_created,priority:2" json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func (Review) TableName() string { return "reviews" }

// MarshalJSON also emits the id as "_id" for clients written against the
// document-store version of the API.
func (r Review) MarshalJSON() ([]byte, error) {
	type alias Review
	return json.Marshal(struct {
		alias
		LegacyID string `json:"_id"`
	}{alias: alias(r), LegacyID: r.ID})
}
