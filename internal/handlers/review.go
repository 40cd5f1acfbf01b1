package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/services"
	"github.com/huangang/feedbacklens/pkg/logger"
	"github.com/huangang/feedbacklens/pkg/response"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewCreated is the subset of a stored review echoed back to the submitter.
type ReviewCreated struct {
	ID         string    `json:"id"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	AIResponse string    `json:"aiResponse"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Create validates a submission, enriches it and stores it.
func (h *ReviewHandler) Create(c *gin.Context) {
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid JSON body")
		return
	}

	rating, text, err := services.ValidateReviewInput(input)
	if err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), rating, text)
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			response.Error(c, appErr)
			return
		}
		logger.Error().Err(err).Str("request_id", c.GetString(logger.RequestIDKey)).Msg("[Review] create failed")
		response.ServerError(c, "Failed to create review")
		return
	}

	response.Created(c, ReviewCreated{
		ID:         review.ID,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		AIResponse: review.AIResponse,
		CreatedAt:  review.CreatedAt,
	})
}

// List returns a page of reviews. Bad query values fall back to defaults.
func (h *ReviewHandler) List(c *gin.Context) {
	var req services.ReviewListRequest
	_ = c.ShouldBindQuery(&req)

	result, err := h.reviewService.List(&req)
	if err != nil {
		logger.Error().Err(err).Msg("[Review] list failed")
		response.ServerError(c, "Failed to fetch reviews")
		return
	}

	response.Success(c, result)
}

// Analytics returns totals, average rating, last-24h count and distribution.
func (h *ReviewHandler) Analytics(c *gin.Context) {
	stats, err := h.reviewService.Analytics()
	if err != nil {
		logger.Error().Err(err).Msg("[Review] analytics failed")
		response.ServerError(c, "Failed to fetch analytics")
		return
	}

	response.Success(c, stats)
}

func (h *ReviewHandler) GetByID(c *gin.Context) {
	review, err := h.reviewService.GetByID(c.Param("id"))
	if err != nil {
		logger.Error().Err(err).Str("id", c.Param("id")).Msg("[Review] get failed")
		response.ServerError(c, "Failed to fetch review")
		return
	}
	if review == nil {
		response.NotFound(c, "Review not found")
		return
	}

	response.Success(c, review)
}
