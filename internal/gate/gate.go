package gate

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// MissingTextError is the error message for an absent or empty text field.
const MissingTextError = "No text provided"

// JitterBound is the half-width of the uniform noise added to each dimension.
const JitterBound = 0.05

// #region jitter
// Jitter returns the noise added to one dimension sub-score.
type Jitter func() float64

// UniformJitter draws independently from [-JitterBound, +JitterBound].
// Dimension sub-scores are therefore not reproducible across calls.
func UniformJitter() float64 {
	return rand.Float64()*2*JitterBound - JitterBound
}

// NoJitter makes dimensions a deterministic function of the primary score.
func NoJitter() float64 { return 0 }

// #endregion jitter

// #region gate
// Gate turns free text into a pass/fail decision with explanatory sub-scores.
// The scorer is read-only after construction, so a Gate may serve
// concurrent callers.
type Gate struct {
	spec   Spec
	scorer Scorer
	jitter Jitter
}

// Option configures a Gate.
type Option func(*Gate)

// WithJitter replaces the dimension noise source.
func WithJitter(j Jitter) Option {
	return func(g *Gate) { g.jitter = j }
}

// NewGate binds a spec to a loaded scorer.
func NewGate(spec Spec, scorer Scorer, opts ...Option) *Gate {
	g := &Gate{spec: spec, scorer: scorer, jitter: UniformJitter}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Spec returns the gate's configuration.
func (g *Gate) Spec() Spec {
	return g.spec
}

// #endregion gate

// #region evaluate
// Evaluate scores a raw JSON request of the form {"text": "..."}. It never
// fails: malformed input, a missing text and scorer panics all come back as
// a Result with Error set and the fail label as decision.
func (g *Gate) Evaluate(raw []byte) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = g.errorResult(fmt.Sprint(r))
		}
	}()

	var req map[string]any
	if err := json.Unmarshal(raw, &req); err != nil {
		return g.errorResult(err.Error())
	}
	value, ok := req["text"]
	if !ok || value == nil {
		return g.missingText()
	}
	text, ok := value.(string)
	if !ok {
		return g.errorResult(fmt.Sprintf("text must be a string, got %T", value))
	}
	return g.evaluateText(text)
}

// EvaluateText scores text directly with the same semantics as Evaluate.
func (g *Gate) EvaluateText(text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = g.errorResult(fmt.Sprint(r))
		}
	}()
	return g.evaluateText(text)
}

func (g *Gate) evaluateText(text string) Result {
	if text == "" {
		return g.missingText()
	}

	p, confidence := g.scorer.Score(text)
	if !(p >= 0 && p <= 1) {
		return g.errorResult(fmt.Sprintf("scorer returned probability %v outside [0, 1]", p))
	}

	decision := g.spec.FailLabel
	if p >= g.spec.Threshold {
		decision = g.spec.PassLabel
	}

	dims := make(map[string]float64, len(g.spec.Dimensions))
	for _, d := range g.spec.Dimensions {
		dims[d.Name] = round3(p*d.Weight + g.jitter())
	}

	res := Result{
		Gate:          g.spec.Name,
		ScoreField:    g.spec.ScoreField,
		PrimaryScore:  round3(p),
		Dimensions:    dims,
		Decision:      decision,
		Confidence:    round3(confidence),
		withRejection: g.spec.HasRejectionGuidance,
	}
	if decision == g.spec.FailLabel && g.spec.HasRejectionGuidance {
		res.RejectionType, res.Guidance = ClassifyRejection(text)
	}
	return res
}

// #endregion evaluate

// #region error-results
func (g *Gate) missingText() Result {
	res := g.errorResult(MissingTextError)
	res.Guidance = g.spec.MissingTextGuidance
	return res
}

func (g *Gate) errorResult(msg string) Result {
	return Result{
		Gate:       g.spec.Name,
		ScoreField: g.spec.ScoreField,
		Decision:   g.spec.FailLabel,
		Error:      msg,
	}
}

// #endregion error-results
