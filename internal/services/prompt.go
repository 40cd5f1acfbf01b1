package services

import "fmt"

// Per-branch sampling parameters.
var (
	responseOptions = GenerateOptions{Temperature: 0.7, MaxTokens: 200}
	summaryOptions  = GenerateOptions{Temperature: 0.5, MaxTokens: 150}
	actionsOptions  = GenerateOptions{Temperature: 0.6, MaxTokens: 300}
)

const (
	responseErrorFallback = "Thank you for your valuable feedback. We appreciate you taking the time to share your experience with us."
	responseEmptyFallback = "Thank you for your feedback!"
)

var genericActionsFallback = []string{
	"Review feedback carefully",
	"Take appropriate action based on rating",
	"Follow up if necessary",
}

func buildResponsePrompt(rating int, text string) string {
	return fmt.Sprintf(`You are a friendly customer service assistant. A customer has left a %d-star review with the following text:

"%s"

Generate a warm, empathetic response thanking them for their feedback. Keep it brief (2-3 sentences), professional, and appropriate for the rating given. For low ratings (1-2 stars), acknowledge their concerns and show we want to improve. For high ratings (4-5 stars), express genuine appreciation.`, rating, text)
}

func buildSummaryPrompt(rating int, text string) string {
	return fmt.Sprintf(`Analyze this %d-star review and provide a concise 1-2 sentence summary highlighting the key points:

"%s"

Focus on the main sentiment and any specific issues or praises mentioned.`, rating, text)
}

func buildActionsPrompt(rating int, text string) string {
	return fmt.Sprintf(`Based on this %d-star review, suggest 2-3 specific, actionable steps the business should take. Be concise and practical.

Review: "%s"

Format your response as a JSON array of strings, like: ["Action 1", "Action 2", "Action 3"]

Only return the JSON array, nothing else.`, rating, text)
}

func summaryErrorFallback(rating int) string {
	return fmt.Sprintf("Customer provided a %d-star rating. Review content requires manual review.", rating)
}

func summaryEmptyFallback(rating int) string {
	return fmt.Sprintf("%d-star review summarized.", rating)
}

// tierActionsFallback is used when the model answered but produced no usable list.
func tierActionsFallback(rating int) []string {
	switch {
	case rating <= 2:
		return []string{
			"Reach out to customer within 24 hours to address concerns",
			"Investigate specific issues mentioned in the review",
			"Implement corrective measures to prevent similar issues",
		}
	case rating == 3:
		return []string{
			"Follow up to understand areas for improvement",
			"Review operational processes mentioned in feedback",
			"Consider customer suggestions for service enhancement",
		}
	default:
		return []string{
			"Thank customer for positive feedback",
			"Share feedback with team for motivation",
			"Maintain consistent service quality standards",
		}
	}
}
