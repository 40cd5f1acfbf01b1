package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/pkg/logger"
)

const maxAlertExcerpt = 500

var notificationHTTPClient = &http.Client{Timeout: 10 * time.Second}

// AlertService raises low-rating alerts through a webhook and email.
type AlertService struct {
	cfg        *config.AlertConfig
	queue      TaskQueue
	email      *EmailService
	httpClient *http.Client
}

// NewAlertService returns an alert service feeding queue. An in-process
// queue is given the service's processor directly; a Redis worker must be
// wired with Process separately.
func NewAlertService(cfg *config.AlertConfig, queue TaskQueue) *AlertService {
	s := &AlertService{
		cfg:        cfg,
		queue:      queue,
		email:      NewEmailService(&cfg.Email),
		httpClient: notificationHTTPClient,
	}
	if local, ok := queue.(*LocalQueue); ok {
		local.SetProcessor(s.Process)
	}
	return s
}

// NotifyReview enqueues an alert when the review's rating is at or below the
// configured threshold. It never blocks on delivery.
func (s *AlertService) NotifyReview(review *models.Review) {
	if !s.cfg.Enabled || review.Rating > s.cfg.MaxRating {
		return
	}

	task := &AlertTask{
		ReviewID:           review.ID,
		Rating:             review.Rating,
		ReviewText:         review.ReviewText,
		AISummary:          review.AISummary,
		RecommendedActions: review.RecommendedActions,
		CreatedAt:          review.CreatedAt,
	}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warn().Err(err).Str("review_id", review.ID).Msg("[Alert] enqueue failed")
	}
}

// Process delivers one alert to every configured channel.
func (s *AlertService) Process(ctx context.Context, task *AlertTask) error {
	var errs []error
	if s.cfg.WebhookURL != "" {
		if err := s.sendWebhook(ctx, task); err != nil {
			errs = append(errs, fmt.Errorf("webhook: %w", err))
		}
	}
	if s.email.Enabled() {
		if err := s.email.SendAlert(ctx, task); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.Warn().Err(err).Str("review_id", task.ReviewID).Msg("[Alert] delivery failed")
		return err
	}
	logger.Info().Str("review_id", task.ReviewID).Int("rating", task.Rating).Msg("[Alert] delivered")
	return nil
}

// sendWebhook posts a payload understood by Slack-style incoming webhooks
// ("text") that also carries the raw fields for generic receivers.
func (s *AlertService) sendWebhook(ctx context.Context, task *AlertTask) error {
	payload := map[string]interface{}{
		"text":                buildAlertMessage(task),
		"event":               "review.low_rating",
		"review_id":           task.ReviewID,
		"rating":              task.Rating,
		"review_text":         task.ReviewText,
		"ai_summary":          task.AISummary,
		"recommended_actions": task.RecommendedActions,
		"created_at":          task.CreatedAt,
	}
	return postJSON(ctx, s.httpClient, s.cfg.WebhookURL, payload)
}

func buildAlertMessage(task *AlertTask) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %d-star review received\n", strings.Repeat("★", task.Rating), task.Rating))
	sb.WriteString(fmt.Sprintf("Review ID: %s\n", task.ReviewID))
	if task.AISummary != "" {
		sb.WriteString(fmt.Sprintf("Summary: %s\n", task.AISummary))
	}
	sb.WriteString(fmt.Sprintf("Review: %s\n", excerpt(task.ReviewText, maxAlertExcerpt)))
	if len(task.RecommendedActions) > 0 {
		sb.WriteString("Recommended actions:\n")
		for i, action := range task.RecommendedActions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, action))
		}
	}
	return sb.String()
}

func excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

func postJSON(ctx context.Context, client *http.Client, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
