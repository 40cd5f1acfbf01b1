package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/internal/services"
	"github.com/huangang/feedbacklens/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/probe", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthHandler_Healthy(t *testing.T) {
	db := testdb.New(t)
	h := NewHealthHandler(db, services.NewLocalQueue(), &stubGenerator{})

	w := serve(h.CheckHealth, "/probe")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "feedbacklens", body["service"])
	components := body["components"].(map[string]interface{})
	assert.Equal(t, "ok", components["database"])
	assert.Equal(t, "in-process", components["queue_mode"])
	assert.Equal(t, "stub", components["llm_provider"])
	assert.Equal(t, "stub-model", components["llm_model"])
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db := testdb.New(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	h := NewHealthHandler(db, services.NewLocalQueue(), nil)
	w := serve(h.CheckHealth, "/probe")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"unhealthy"`)
}

func TestMetricsHandler(t *testing.T) {
	db := testdb.New(t)
	reviews := services.NewReviewService(db, nil, nil, nil)
	usage := services.NewAIUsageService(db)
	require.NoError(t, reviews.Create(&models.Review{Rating: 3, ReviewText: "ok", AIResponse: "thanks", AISummary: "neutral"}))
	require.NoError(t, usage.Save(&models.AIUsageLog{Kind: models.UsageKindSummary, Provider: "stub", LatencyMs: 40, Fallback: true}))

	h := NewMetricsHandler(db, reviews, usage, services.NewLocalQueue())
	w := serve(h.Metrics, "/probe")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	body := w.Body.String()
	assert.Contains(t, body, "# TYPE feedbacklens_reviews_total gauge")
	assert.Contains(t, body, "feedbacklens_reviews_total 1\n")
	assert.Contains(t, body, "feedbacklens_reviews_average_rating 3\n")
	assert.Contains(t, body, "feedbacklens_queue_async_enabled 0\n")
	assert.Contains(t, body, "feedbacklens_ai_calls_24h 1\n")
	assert.Contains(t, body, "feedbacklens_ai_fallbacks_24h 1\n")
	assert.Contains(t, body, "feedbacklens_goroutines")
}

func TestUIConfig(t *testing.T) {
	w := serve(UIConfig(&config.UIConfig{APIBaseURL: "https://api.example.com"}), "/probe")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "window.FEEDBACKLENS_CONFIG = {\"apiBaseUrl\":\"https://api.example.com\"};\n", w.Body.String())
}

func TestAIUsageHandler(t *testing.T) {
	db := testdb.New(t)
	usage := services.NewAIUsageService(db)
	day := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, usage.Save(&models.AIUsageLog{Kind: models.UsageKindResponse, Provider: "groq", Model: "llama", PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30, Success: true, CreatedAt: day}))
	require.NoError(t, usage.Save(&models.AIUsageLog{Kind: models.UsageKindActions, Provider: "groq", Model: "llama", Fallback: true, CreatedAt: day}))
	require.NoError(t, usage.Save(&models.AIUsageLog{Kind: models.UsageKindResponse, Provider: "groq", Model: "llama", Success: true, CreatedAt: day.AddDate(0, 0, 5)}))
	h := NewAIUsageHandler(usage)

	t.Run("stats in range", func(t *testing.T) {
		w := serve(h.GetStats, "/probe?start_date=2026-05-10&end_date=2026-05-10")
		require.Equal(t, http.StatusOK, w.Code)

		var stats services.UsageStats
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &stats))
		assert.EqualValues(t, 2, stats.TotalCalls)
		assert.EqualValues(t, 30, stats.TotalTokens)
		assert.EqualValues(t, 1, stats.SuccessCount)
		assert.EqualValues(t, 1, stats.FallbackCount)
	})

	t.Run("daily trend", func(t *testing.T) {
		w := serve(h.GetDailyTrend, "/probe")
		require.Equal(t, http.StatusOK, w.Code)

		var trend []services.DailyUsage
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &trend))
		assert.Len(t, trend, 2)
	})

	t.Run("provider breakdown", func(t *testing.T) {
		w := serve(h.GetProviderBreakdown, "/probe")
		require.Equal(t, http.StatusOK, w.Code)

		var providers []services.ProviderUsage
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &providers))
		assert.Len(t, providers, 2) // response and actions
	})
}
