package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

var reviewSortColumns = map[string]string{
	"createdAt": "created_at",
	"rating":    "rating",
	"updatedAt": "updated_at",
}

// ReviewNotifier is told about every stored review.
type ReviewNotifier interface {
	NotifyReview(review *models.Review)
}

type ReviewService struct {
	db         *gorm.DB
	enrichment *EnrichmentService
	usage      *AIUsageService
	notifier   ReviewNotifier
	now        func() time.Time
}

// NewReviewService wires the store with the enrichment pipeline. usage and
// notifier may be nil.
func NewReviewService(db *gorm.DB, enrichment *EnrichmentService, usage *AIUsageService, notifier ReviewNotifier) *ReviewService {
	return &ReviewService{
		db:         db,
		enrichment: enrichment,
		usage:      usage,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Submit enriches a validated review, stores it, then records model usage
// and hands the review to the notifier.
func (s *ReviewService) Submit(ctx context.Context, rating int, text string) (*models.Review, error) {
	if s.enrichment == nil {
		return nil, errors.New("review enrichment is not configured")
	}

	enriched, err := s.enrichment.Enrich(ctx, rating, text)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		Rating:             rating,
		ReviewText:         text,
		AIResponse:         enriched.AIResponse,
		AISummary:          enriched.AISummary,
		RecommendedActions: enriched.RecommendedActions,
		Metadata:           enriched.Metadata,
	}
	if err := s.Create(review); err != nil {
		return nil, err
	}

	if s.usage != nil {
		for i := range enriched.Usage {
			entry := enriched.Usage[i]
			entry.ReviewID = &review.ID
			s.usage.Record(&entry)
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyReview(review)
	}

	logger.Info().Str("review_id", review.ID).Int("rating", review.Rating).Msg("[Review] created")
	return review, nil
}

// Create inserts a review, assigning its id and timestamps.
func (s *ReviewService) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.RecommendedActions == nil {
		review.RecommendedActions = []string{}
	}
	now := s.now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := s.db.Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ReviewListRequest carries the raw query string. Values that do not parse
// fall back to defaults instead of failing the request.
type ReviewListRequest struct {
	Rating string `form:"rating"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
	SortBy string `form:"sortBy"`
	Order  string `form:"order"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type ReviewListResponse struct {
	Reviews    []models.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

// List returns a filtered, sorted page of reviews.
func (s *ReviewService) List(req *ReviewListRequest) (*ReviewListResponse, error) {
	page, ok := parseLeadingInt(req.Page)
	if !ok || page < 1 {
		page = 1
	}
	limit, ok := parseLeadingInt(req.Limit)
	if !ok || limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	column, ok := reviewSortColumns[req.SortBy]
	if !ok {
		column = reviewSortColumns["createdAt"]
	}
	direction := "DESC"
	if strings.EqualFold(req.Order, "asc") {
		direction = "ASC"
	}

	query := s.db.Model(&models.Review{})
	if rating, ok := parseLeadingInt(req.Rating); ok && rating >= models.MinRating && rating <= models.MaxRating {
		query = query.Where("rating = ?", rating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	reviews := []models.Review{}
	offset := (page - 1) * limit
	if err := query.Order(column + " " + direction).Order("id " + direction).
		Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &ReviewListResponse{
		Reviews: reviews,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// GetByID returns the review, or nil without error when it does not exist.
func (s *ReviewService) GetByID(id string) (*models.Review, error) {
	var review models.Review
	err := s.db.Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return &review, nil
}

type ReviewAnalytics struct {
	TotalReviews       int64         `json:"totalReviews"`
	AverageRating      float64       `json:"averageRating"`
	RecentReviews      int64         `json:"recentReviews"`
	RatingDistribution map[int]int64 `json:"ratingDistribution"`
}

// Analytics aggregates over every stored review. Recent means created in the
// 24 hours before the call.
func (s *ReviewService) Analytics() (*ReviewAnalytics, error) {
	result := &ReviewAnalytics{RatingDistribution: make(map[int]int64, models.MaxRating)}
	for r := models.MinRating; r <= models.MaxRating; r++ {
		result.RatingDistribution[r] = 0
	}

	var buckets []struct {
		Rating int
		Count  int64
	}
	if err := s.db.Model(&models.Review{}).
		Select("rating, COUNT(*) as count").
		Group("rating").
		Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}

	var sum int64
	for _, b := range buckets {
		result.RatingDistribution[b.Rating] = b.Count
		result.TotalReviews += b.Count
		sum += int64(b.Rating) * b.Count
	}
	if result.TotalReviews > 0 {
		avg := float64(sum) / float64(result.TotalReviews)
		result.AverageRating = math.Round(avg*10) / 10
	}

	since := s.now().UTC().Add(-24 * time.Hour)
	if err := s.db.Model(&models.Review{}).
		Where("created_at >= ?", since).
		Count(&result.RecentReviews).Error; err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}

	return result, nil
}

// parseLeadingInt reads an optionally signed run of digits at the start of s,
// ignoring whatever follows.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
