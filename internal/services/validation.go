package services

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/huangang/feedbacklens/internal/models"
	"github.com/huangang/feedbacklens/pkg/response"
)

// ReviewInput is the raw submission body. Fields stay untyped so that wrong
// JSON types are reported as validation errors rather than bind errors.
type ReviewInput struct {
	Rating     interface{} `json:"rating"`
	ReviewText interface{} `json:"reviewText"`
}

// ValidateReviewInput checks a submission and returns the rating and the
// trimmed text. Failures are *response.AppError with status 400.
func ValidateReviewInput(in ReviewInput) (int, string, error) {
	if isBlankValue(in.Rating) || isBlankValue(in.ReviewText) {
		return 0, "", response.NewBadRequest("Rating and review text are required")
	}

	rating, ok := integerRating(in.Rating)
	if !ok || rating < models.MinRating || rating > models.MaxRating {
		return 0, "", response.NewBadRequest("Rating must be an integer between 1 and 5")
	}

	text, ok := in.ReviewText.(string)
	if !ok {
		return 0, "", response.NewBadRequest("Review text must be a string")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "", response.NewBadRequest("Review text cannot be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxReviewTextLength {
		return 0, "", response.NewBadRequest("Review text must be less than 5000 characters")
	}

	return rating, text, nil
}

// isBlankValue reports missing, null, zero, empty-string and false values.
func isBlankValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0 || math.IsNaN(val)
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	}
	return false
}

func integerRating(v interface{}) (int, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
