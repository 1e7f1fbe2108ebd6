package gate

import "strings"

// #region keywords

var adviceSeekingKeywords = []string{"should i", "what should", "recommend", "advise"}

var predictiveKeywords = []string{"will i", "will it", "what will", "going to"}

var leadingKeywords = []string{"won't", "isn't it", "don't you think", "right?"}

var comparisonKeywords = []string{"what if i had", "other option", "alternative"}

// binaryWordLimit: questions with fewer words are treated as yes/no.
const binaryWordLimit = 6

// #endregion keywords

// #region guidance

var rejectionGuidance = map[RejectionType]string{
	RejectionGeneric:       "This question is too vague. Ask about specific aspects of your future experience.",
	RejectionAdviceSeeking: "This question seeks advice. Ask about your future self's internal experience instead.",
	RejectionPredictive:    "This question asks for predictions. Ask about one possible future experience.",
	RejectionLeading:       "This question seeks validation. Ask open questions about your future self's experience.",
	RejectionBinary:        "This question is too simple. Explore specific dimensions of your future experience.",
	RejectionComparison:    "This system explores ONE future. Ask about this path specifically.",
}

// Guidance returns the canned guidance for a rejection type, falling back to generic.
func Guidance(t RejectionType) string {
	if g, ok := rejectionGuidance[t]; ok {
		return g
	}
	return rejectionGuidance[RejectionGeneric]
}

// #endregion guidance

// #region classify

// ClassifyRejection labels why a shallow question was rejected. Rules run in
// priority order and the first match wins, so "Should I do this right?" is
// advice_seeking rather than leading.
func ClassifyRejection(text string) (RejectionType, string) {
	t := classifyRejectionType(text)
	return t, Guidance(t)
}

func classifyRejectionType(text string) RejectionType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, adviceSeekingKeywords):
		return RejectionAdviceSeeking
	case containsAny(lower, predictiveKeywords):
		return RejectionPredictive
	case containsAny(lower, leadingKeywords):
		return RejectionLeading
	case containsAny(lower, comparisonKeywords):
		return RejectionComparison
	case len(strings.Fields(text)) < binaryWordLimit:
		return RejectionBinary
	}
	return RejectionGeneric
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// #endregion classify
