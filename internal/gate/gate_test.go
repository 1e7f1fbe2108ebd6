package gate

import (
	"encoding/json"
	"math"
	"testing"
)

// #region helpers
type fixedScorer struct {
	p float64
}

func (s fixedScorer) Score(string) (float64, float64) {
	return s.p, math.Max(s.p, 1-s.p)
}

type panicScorer struct{}

func (panicScorer) Score(string) (float64, float64) {
	panic("classifier exploded")
}

func decode(t *testing.T, r Result) map[string]any {
	t.Helper()
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return out
}

// #endregion helpers

// #region threshold-tests
func TestThresholdIsClosedLowerBound(t *testing.T) {
	cases := []struct {
		spec Spec
		p    float64
		want string
	}{
		{DecisionGravity, 0.5, "PROCEED"},
		{DecisionGravity, 0.499, "REFUSE"},
		{ConsequenceDepth, 0.5, "APPROVE"},
		{ConsequenceDepth, 0.4999, "TERMINATE"},
		{QuestionDepth, 0.6, "PROCEED"},
		{QuestionDepth, 0.59, "REJECT"},
	}
	for _, tc := range cases {
		g := NewGate(tc.spec, fixedScorer{p: tc.p})
		res := g.Evaluate([]byte(`{"text": "some text here"}`))
		if res.Decision != tc.want {
			t.Errorf("%s p=%.4f: expected %s, got %s", tc.spec.Name, tc.p, tc.want, res.Decision)
		}
	}
}

func TestConfidenceIsMaxProbability(t *testing.T) {
	for _, p := range []float64{0, 0.12345, 0.5, 0.77, 1} {
		g := NewGate(DecisionGravity, fixedScorer{p: p})
		res := g.EvaluateText("leaving my career")
		want := round3(math.Max(p, 1-p))
		if res.Confidence != want {
			t.Errorf("p=%.5f: expected confidence %.3f, got %.3f", p, want, res.Confidence)
		}
		if res.Confidence < 0.5 || res.Confidence > 1.0 {
			t.Errorf("confidence %.3f out of [0.5, 1]", res.Confidence)
		}
	}
}

func TestPrimaryScoreRounded(t *testing.T) {
	g := NewGate(DecisionGravity, fixedScorer{p: 0.87654})
	res := g.EvaluateText("leaving my career")
	if res.PrimaryScore != 0.877 {
		t.Fatalf("expected 0.877, got %v", res.PrimaryScore)
	}
}

func TestRound3UsesExactBinaryValue(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.1235, 0.123},
		{0.6665, 0.666},
		{0.87654, 0.877},
		{0.125, 0.125},
		{0.0005, 0.001},
		{1, 1},
	}
	for _, tt := range tests {
		if got := round3(tt.in); got != tt.want {
			t.Errorf("round3(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

// #endregion threshold-tests

// #region dimension-tests
func TestDimensionsWithinJitterBounds(t *testing.T) {
	for _, spec := range Specs() {
		g := NewGate(spec, fixedScorer{p: 0.73})
		for i := 0; i < 200; i++ {
			res := g.EvaluateText("a reasonably long piece of text")
			if len(res.Dimensions) != 3 {
				t.Fatalf("%s: expected 3 dimensions, got %d", spec.Name, len(res.Dimensions))
			}
			for _, d := range spec.Dimensions {
				v, ok := res.Dimensions[d.Name]
				if !ok {
					t.Fatalf("%s: missing dimension %s", spec.Name, d.Name)
				}
				center := 0.73 * d.Weight
				// rounding to 3dp can move the value by up to 0.0005
				if v < center-JitterBound-0.0005 || v > center+JitterBound+0.0005 {
					t.Errorf("%s/%s: %.3f outside [%.4f, %.4f]", spec.Name, d.Name, v, center-JitterBound, center+JitterBound)
				}
			}
		}
	}
}

func TestNoJitterIsDeterministic(t *testing.T) {
	g := NewGate(ConsequenceDepth, fixedScorer{p: 0.8}, WithJitter(NoJitter))
	res := g.EvaluateText("I might feel a quiet grief")
	want := map[string]float64{
		"emotional_specificity": 0.76,
		"concrete_reasoning":    0.736,
		"narrative_depth":       0.784,
	}
	for name, v := range want {
		if res.Dimensions[name] != v {
			t.Errorf("%s: expected %.3f, got %.3f", name, v, res.Dimensions[name])
		}
	}
}

func TestUniformJitterRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		j := UniformJitter()
		if j < -JitterBound || j > JitterBound {
			t.Fatalf("jitter %.5f out of range", j)
		}
	}
}

// #endregion dimension-tests

// #region never-fails-tests
func TestEvaluateNeverFails(t *testing.T) {
	inputs := map[string]string{
		"malformed":   `{"text": `,
		"empty-obj":   `{}`,
		"empty-text":  `{"text": ""}`,
		"null-text":   `{"text": null}`,
		"number-text": `{"text": 42}`,
		"array":       `["text"]`,
		"null":        `null`,
		"empty-body":  ``,
	}
	for _, spec := range Specs() {
		g := NewGate(spec, fixedScorer{p: 0.9})
		for name, in := range inputs {
			res := g.Evaluate([]byte(in))
			if res.Decision != spec.FailLabel {
				t.Errorf("%s/%s: expected %s, got %s", spec.Name, name, spec.FailLabel, res.Decision)
			}
			if res.Error == "" {
				t.Errorf("%s/%s: expected error message", spec.Name, name)
			}
		}
	}
}

func TestMissingTextResponseShape(t *testing.T) {
	for _, spec := range Specs() {
		g := NewGate(spec, fixedScorer{p: 0.9})
		out := decode(t, g.Evaluate([]byte(`{}`)))

		if out["error"] != MissingTextError {
			t.Errorf("%s: expected error %q, got %v", spec.Name, MissingTextError, out["error"])
		}
		if out["gate_decision"] != spec.FailLabel {
			t.Errorf("%s: expected decision %s, got %v", spec.Name, spec.FailLabel, out["gate_decision"])
		}
		if _, ok := out[spec.ScoreField]; ok {
			t.Errorf("%s: score field should be absent on error", spec.Name)
		}
		if _, ok := out["dimensions"]; ok {
			t.Errorf("%s: dimensions should be absent on error", spec.Name)
		}
		_, hasGuidance := out["guidance"]
		if hasGuidance != (spec.MissingTextGuidance != "") {
			t.Errorf("%s: unexpected guidance presence %v", spec.Name, hasGuidance)
		}
	}
}

func TestScorerPanicBecomesErrorResult(t *testing.T) {
	g := NewGate(QuestionDepth, panicScorer{})
	res := g.Evaluate([]byte(`{"text": "What might I notice?"}`))
	if res.Error != "classifier exploded" {
		t.Fatalf("expected recovered panic message, got %q", res.Error)
	}
	if res.Decision != "REJECT" {
		t.Fatalf("expected REJECT, got %s", res.Decision)
	}
}

func TestOutOfRangeProbabilityIsError(t *testing.T) {
	g := NewGate(DecisionGravity, fixedScorer{p: math.NaN()})
	res := g.EvaluateText("text")
	if res.Error == "" || res.Decision != "REFUSE" {
		t.Fatalf("expected error result with REFUSE, got %+v", res)
	}
}

// #endregion never-fails-tests

// #region scenario-tests
func TestDecisionGravityScenario(t *testing.T) {
	g := NewGate(DecisionGravity, fixedScorer{p: 0.81})
	out := decode(t, g.Evaluate([]byte(`{"text": "I'm considering leaving my 15-year career to start my own company"}`)))

	if out["gate_decision"] != "PROCEED" {
		t.Fatalf("expected PROCEED, got %v", out["gate_decision"])
	}
	if out["gravity_score"] != 0.81 {
		t.Errorf("expected gravity_score 0.81, got %v", out["gravity_score"])
	}
	if _, ok := out["rejection_type"]; ok {
		t.Error("decision-gravity responses carry no rejection_type")
	}
}

func TestQuestionDepthPredictiveScenario(t *testing.T) {
	g := NewGate(QuestionDepth, fixedScorer{p: 0.2})
	out := decode(t, g.Evaluate([]byte(`{"text": "Will I be happy?"}`)))

	if out["gate_decision"] != "REJECT" {
		t.Fatalf("expected REJECT, got %v", out["gate_decision"])
	}
	if out["rejection_type"] != "predictive" {
		t.Errorf("expected predictive, got %v", out["rejection_type"])
	}
	if out["guidance"] != Guidance(RejectionPredictive) {
		t.Errorf("unexpected guidance %v", out["guidance"])
	}
}

func TestQuestionDepthPassHasNullRejection(t *testing.T) {
	g := NewGate(QuestionDepth, fixedScorer{p: 0.9})
	out := decode(t, g.Evaluate([]byte(`{"text": "What might I find myself thinking about in quiet moments?"}`)))

	v, ok := out["rejection_type"]
	if !ok || v != nil {
		t.Errorf("expected rejection_type: null, got %v (present=%v)", v, ok)
	}
	v, ok = out["guidance"]
	if !ok || v != nil {
		t.Errorf("expected guidance: null, got %v (present=%v)", v, ok)
	}
}

func TestConsequenceDepthFailHasNoRejection(t *testing.T) {
	g := NewGate(ConsequenceDepth, fixedScorer{p: 0.1})
	res := g.EvaluateText("I might feel different about things.")
	if res.Decision != "TERMINATE" {
		t.Fatalf("expected TERMINATE, got %s", res.Decision)
	}
	if res.RejectionType != "" || res.Guidance != "" {
		t.Errorf("only question-depth populates rejection info, got %+v", res)
	}
}

// #endregion scenario-tests

// #region spec-tests
func TestByName(t *testing.T) {
	s, ok := ByName("question-depth")
	if !ok || s.Threshold != 0.6 {
		t.Fatalf("unexpected spec %+v (ok=%v)", s, ok)
	}
	if _, ok := ByName("nope"); ok {
		t.Error("unknown gate should not resolve")
	}
	if len(Specs()) != 3 {
		t.Errorf("expected 3 specs, got %d", len(Specs()))
	}
}

// #endregion spec-tests
