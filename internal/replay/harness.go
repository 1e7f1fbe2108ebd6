package replay

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/fcs-gates/internal/eval"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
)

// #region types
// ReplayResult captures the outcome of replaying one fixture case.
type ReplayResult struct {
	CaseID string
	Gate   string
	Action string // "match" | "mismatch" | "error" | "skipped"
	Reason string

	ExpectedPass bool
	ActualPass   bool
	Result       gate.Result
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCases int
	Matches    int
	Mismatches int
	Errors     int
	Skipped    int
	// PerGate scores each gate's decisions against the expected ones.
	PerGate map[string]eval.EvalResult
}

// #endregion types

// #region replay
// Replay runs every case through its gate. Cases naming a gate that is not
// loaded are skipped. Decisions are compared first; for question-depth
// rejections the rejection type must also agree when the case names one.
func Replay(gates map[string]*gate.Gate, cases []FixtureCase) []ReplayResult {
	results := make([]ReplayResult, 0, len(cases))
	for _, c := range cases {
		g, ok := gates[c.Gate]
		if !ok {
			results = append(results, ReplayResult{
				CaseID: c.ID,
				Gate:   c.Gate,
				Action: "skipped",
				Reason: "gate not loaded",
			})
			continue
		}

		spec := g.Spec()
		res := g.EvaluateText(c.Text)
		r := ReplayResult{
			CaseID:       c.ID,
			Gate:         c.Gate,
			ExpectedPass: c.Expect == spec.PassLabel,
			ActualPass:   res.Passed(spec),
			Result:       res,
		}

		switch {
		case res.Error != "":
			r.Action = "error"
			r.Reason = res.Error
		case res.Decision != c.Expect:
			r.Action = "mismatch"
			r.Reason = fmt.Sprintf("expected %s, got %s (score %.3f)", c.Expect, res.Decision, res.PrimaryScore)
		case c.Rejected != "" && string(res.RejectionType) != c.Rejected:
			r.Action = "mismatch"
			r.Reason = fmt.Sprintf("expected rejection %s, got %s", c.Rejected, res.RejectionType)
		default:
			r.Action = "match"
			r.Reason = res.Decision
		}
		results = append(results, r)
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) (ReplaySummary, error) {
	s := ReplaySummary{
		TotalCases: len(results),
		PerGate:    make(map[string]eval.EvalResult),
	}

	labels := make(map[string][]int)
	preds := make(map[string][]float64)
	for _, r := range results {
		switch r.Action {
		case "match":
			s.Matches++
		case "mismatch":
			s.Mismatches++
		case "error":
			s.Errors++
		case "skipped":
			s.Skipped++
			continue
		}
		labels[r.Gate] = append(labels[r.Gate], boolInt(r.ExpectedPass))
		preds[r.Gate] = append(preds[r.Gate], float64(boolInt(r.ActualPass)))
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	harness := eval.NewEvalHarness(eval.DefaultEvalConfig())
	for _, name := range names {
		res, err := harness.Run(labels[name], preds[name], [2]string{"fail", "pass"})
		if err != nil {
			return ReplaySummary{}, fmt.Errorf("summarize %s: %w", name, err)
		}
		s.PerGate[name] = res
	}
	return s, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion replay
