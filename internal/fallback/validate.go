package fallback

import (
	"math"
	"strings"
	"unicode/utf8"

	"relieflink/pkg/types"
)

const (
	MinItemNameLength = 3
	MinLocationLength = 5

	ValidConfidence       = 0.85
	BaseInvalidConfidence = 0.8
	IssuePenalty          = 0.2
	MinConfidence         = 0.3
)

const (
	IssueNameTooShort         = "Item name is too short"
	IssueInvalidQuantity      = "Invalid quantity"
	IssueInsufficientLocation = "Insufficient location details"
)

var issueSuggestions = map[string]string{
	IssueNameTooShort:         "Use a descriptive item name of at least 3 characters",
	IssueInvalidQuantity:      "Quantity must be greater than zero",
	IssueInsufficientLocation: "Include area, road and a nearby landmark in the location",
}

// Validate scores a submission with fixed rules. Problems with the input
// come back as issues on the outcome.
func (e *Engine) Validate(content types.SubmissionContent) types.ValidationOutcome {
	var issues []string

	if utf8.RuneCountInString(strings.TrimSpace(content.ItemName)) < MinItemNameLength {
		issues = append(issues, IssueNameTooShort)
	}
	if content.Quantity <= 0 {
		issues = append(issues, IssueInvalidQuantity)
	}
	if utf8.RuneCountInString(strings.TrimSpace(content.Location)) < MinLocationLength {
		issues = append(issues, IssueInsufficientLocation)
	}

	suggestions := make([]string, 0, len(issues)+1)
	for _, issue := range issues {
		suggestions = append(suggestions, issueSuggestions[issue])
	}

	if len(issues) == 0 && (content.Description == nil || strings.TrimSpace(*content.Description) == "") {
		suggestions = append(suggestions, "Add a short description to help volunteers")
	}

	outcome := types.ValidationOutcome{
		IsValid:     len(issues) == 0,
		Confidence:  confidenceFor(len(issues)),
		Issues:      issues,
		Suggestions: suggestions,
	}
	outcome.ApplyThresholds()

	return outcome
}

func confidenceFor(issueCount int) float64 {
	if issueCount == 0 {
		return ValidConfidence
	}
	return math.Max(MinConfidence, BaseInvalidConfidence-IssuePenalty*float64(issueCount))
}
