package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/pkg/logger"
	"github.com/huangang/feedbacklens/pkg/response"
	"golang.org/x/sync/errgroup"
)

const maxUsageErrorLength = 500

// Enrichment holds the generated artifacts for one review plus a usage
// entry per model call. Usage entries have no ReviewID yet.
type Enrichment struct {
	AIResponse         string
	AISummary          string
	RecommendedActions []string
	Metadata           models.ReviewMetadata
	Usage              []models.AIUsageLog
}

type EnrichmentService struct {
	generator TextGenerator
	timeout   time.Duration
}

// NewEnrichmentService returns a pipeline over gen. A positive timeout bounds
// each model call individually.
func NewEnrichmentService(gen TextGenerator, timeout time.Duration) *EnrichmentService {
	return &EnrichmentService{generator: gen, timeout: timeout}
}

// Enrich runs the response, summary and actions calls concurrently. Model
// failures are absorbed into fallbacks, so the only error is a bad input.
func (s *EnrichmentService) Enrich(ctx context.Context, rating int, text string) (*Enrichment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, response.NewBadRequest("Review text cannot be empty")
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, response.NewBadRequest("Rating must be between 1 and 5")
	}

	start := time.Now()
	result := &Enrichment{Usage: make([]models.AIUsageLog, 3)}

	var g errgroup.Group
	g.Go(func() error {
		result.AIResponse, result.Usage[0] = s.generateResponse(ctx, rating, text)
		return nil
	})
	g.Go(func() error {
		result.AISummary, result.Usage[1] = s.generateSummary(ctx, rating, text)
		return nil
	})
	g.Go(func() error {
		result.RecommendedActions, result.Usage[2] = s.generateActions(ctx, rating, text)
		return nil
	})
	_ = g.Wait()

	result.Metadata = models.ReviewMetadata{
		ProcessingTime: time.Since(start).Milliseconds(),
		LLMModel:       s.generator.Model(),
	}

	logger.Info().
		Int("rating", rating).
		Int64("processing_ms", result.Metadata.ProcessingTime).
		Str("model", result.Metadata.LLMModel).
		Msg("[Enrich] review enriched")

	return result, nil
}

func (s *EnrichmentService) generateResponse(ctx context.Context, rating int, text string) (string, models.AIUsageLog) {
	content, usage, err := s.call(ctx, models.UsageKindResponse, buildResponsePrompt(rating, text), responseOptions)
	if err != nil {
		logger.Warn().Err(err).Msg("[Enrich] customer response failed, using fallback")
		usage.Fallback = true
		return responseErrorFallback, usage
	}
	if content == "" {
		usage.Fallback = true
		return responseEmptyFallback, usage
	}
	return content, usage
}

func (s *EnrichmentService) generateSummary(ctx context.Context, rating int, text string) (string, models.AIUsageLog) {
	content, usage, err := s.call(ctx, models.UsageKindSummary, buildSummaryPrompt(rating, text), summaryOptions)
	if err != nil {
		logger.Warn().Err(err).Msg("[Enrich] admin summary failed, using fallback")
		usage.Fallback = true
		return summaryErrorFallback(rating), usage
	}
	if content == "" {
		usage.Fallback = true
		return summaryEmptyFallback(rating), usage
	}
	return content, usage
}

func (s *EnrichmentService) generateActions(ctx context.Context, rating int, text string) ([]string, models.AIUsageLog) {
	content, usage, err := s.call(ctx, models.UsageKindActions, buildActionsPrompt(rating, text), actionsOptions)
	if err != nil {
		logger.Warn().Err(err).Msg("[Enrich] recommended actions failed, using fallback")
		usage.Fallback = true
		return append([]string(nil), genericActionsFallback...), usage
	}

	actions := parseRecommendedActions(content)
	if len(actions) == 0 {
		logger.Debug().Str("content", content).Msg("[Enrich] no action list in model output")
		usage.Fallback = true
		return tierActionsFallback(rating), usage
	}
	return actions, usage
}

// call issues one generation and describes it as a usage entry.
func (s *EnrichmentService) call(ctx context.Context, kind, prompt string, opts GenerateOptions) (string, models.AIUsageLog, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.generator.Generate(ctx, prompt, opts)

	usage := models.AIUsageLog{
		Kind:      kind,
		Provider:  s.generator.Provider(),
		Model:     s.generator.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		msg := err.Error()
		if len(msg) > maxUsageErrorLength {
			msg = msg[:maxUsageErrorLength]
		}
		usage.ErrorMessage = msg
		return "", usage, err
	}

	usage.PromptTokens = out.PromptTokens
	usage.CompletionTokens = out.CompletionTokens
	usage.TotalTokens = out.PromptTokens + out.CompletionTokens
	return strings.TrimSpace(out.Content), usage, nil
}

// parseRecommendedActions extracts the first JSON string array embedded in
// content. Blank items are dropped and at most MaxRecommendedActions are kept.
func parseRecommendedActions(content string) []string {
	for i := strings.IndexByte(content, '['); i >= 0; {
		var items []string
		if err := json.NewDecoder(strings.NewReader(content[i:])).Decode(&items); err == nil {
			actions := make([]string, 0, models.MaxRecommendedActions)
			for _, item := range items {
				item = strings.TrimSpace(item)
				if item == "" {
					continue
				}
				actions = append(actions, item)
				if len(actions) == models.MaxRecommendedActions {
					break
				}
			}
			return actions
		}

		next := strings.IndexByte(content[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil
}
