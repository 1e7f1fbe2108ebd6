package gate

import (
	"encoding/json"
	"strconv"
)

// #region scorer
// Scorer produces the positive-class probability and the classifier's
// confidence, max(P(neg), P(pos)), for a non-empty text.
type Scorer interface {
	Score(text string) (float64, float64)
}

// #endregion scorer

// #region rejection-type
// RejectionType explains why a question was judged shallow.
type RejectionType string

const (
	RejectionGeneric       RejectionType = "generic"
	RejectionAdviceSeeking RejectionType = "advice_seeking"
	RejectionPredictive    RejectionType = "predictive"
	RejectionLeading       RejectionType = "leading"
	RejectionBinary        RejectionType = "binary"
	RejectionComparison    RejectionType = "comparison"
)

// #endregion rejection-type

// #region spec
// Dimension is a named sub-score derived from the primary score.
type Dimension struct {
	Name   string
	Weight float64
}

// Spec is the immutable per-gate configuration.
type Spec struct {
	Name                 string
	ScoreField           string
	Threshold            float64 // closed lower bound: score >= Threshold passes
	PassLabel            string
	FailLabel            string
	Dimensions           [3]Dimension
	HasRejectionGuidance bool
	MissingTextGuidance  string // returned with the missing-text error, if set
	ArtifactFile         string // default artifact file name under the model dir
}

// #endregion spec

// #region result
// Result is the structured outcome of a single evaluation.
type Result struct {
	Gate          string
	ScoreField    string
	PrimaryScore  float64
	Dimensions    map[string]float64
	Decision      string
	Confidence    float64
	RejectionType RejectionType // empty when not rejected
	Guidance      string
	Error         string

	withRejection bool
}

// Passed reports whether the decision is the gate's pass label.
func (r Result) Passed(spec Spec) bool {
	return r.Error == "" && r.Decision == spec.PassLabel
}

// MarshalJSON renders the gate's wire shape. Error results carry only the
// error, the decision and, when present, guidance.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		out := map[string]any{
			"error":         r.Error,
			"gate_decision": r.Decision,
		}
		if r.Guidance != "" {
			out["guidance"] = r.Guidance
		}
		return json.Marshal(out)
	}

	out := map[string]any{
		r.ScoreField:    r.PrimaryScore,
		"dimensions":    r.Dimensions,
		"gate_decision": r.Decision,
		"confidence":    r.Confidence,
	}
	if r.withRejection {
		out["rejection_type"] = nil
		out["guidance"] = nil
		if r.RejectionType != "" {
			out["rejection_type"] = r.RejectionType
			out["guidance"] = r.Guidance
		}
	}
	return json.Marshal(out)
}

// #endregion result

// #region helpers
// round3 rounds the exact binary value of x to 3 decimal places, ties to
// even, so 0.1235 (stored just below the tie) becomes 0.123.
func round3(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// #endregion helpers
