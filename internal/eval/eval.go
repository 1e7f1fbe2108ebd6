package eval

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// #region eval-harness
// EvalHarness scores binary predictions against labels.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run compares positive-class probabilities with 0/1 labels. classNames
// label the negative and positive class in the report.
func (h *EvalHarness) Run(labels []int, probs []float64, classNames [2]string) (EvalResult, error) {
	if len(labels) != len(probs) {
		return EvalResult{}, fmt.Errorf("eval: %d labels but %d probabilities", len(labels), len(probs))
	}

	res := EvalResult{Passed: true, Reason: "all checks passed"}
	res.Classes[0].Name, res.Classes[1].Name = classNames[0], classNames[1]
	if len(labels) == 0 {
		res.Reason = "no examples"
		return res, nil
	}

	for i, p := range probs {
		pred := 0
		if p > h.config.Boundary {
			pred = 1
		}
		res.Confusion[labels[i]][pred]++
	}

	res.Accuracy = float64(res.Confusion[0][0]+res.Confusion[1][1]) / float64(len(labels))
	for c := 0; c < 2; c++ {
		res.Classes[c] = classReport(res.Confusion, c, classNames[c])
	}

	var err error
	if res.MeanPositiveProb, err = stats.Mean(probs); err != nil {
		return EvalResult{}, fmt.Errorf("eval mean: %w", err)
	}
	if res.StdPositiveProb, err = stats.StandardDeviation(probs); err != nil {
		return EvalResult{}, fmt.Errorf("eval std: %w", err)
	}

	accPass := res.Accuracy >= h.config.MinAccuracy
	res.Metrics = append(res.Metrics,
		EvalMetric{Name: "accuracy", Value: res.Accuracy, Pass: accPass},
		EvalMetric{Name: "macro_f1", Value: (res.Classes[0].F1 + res.Classes[1].F1) / 2, Pass: true},
		EvalMetric{Name: "mean_positive_prob", Value: res.MeanPositiveProb, Pass: true},
	)
	if !accPass {
		res.Passed = false
		res.Reason = fmt.Sprintf("eval failed: accuracy %.4f below %.4f", res.Accuracy, h.config.MinAccuracy)
	}
	return res, nil
}

// #endregion eval-harness

// #region helpers
func classReport(confusion [2][2]int, c int, name string) ClassReport {
	tp := float64(confusion[c][c])
	predicted := float64(confusion[0][c] + confusion[1][c])
	actual := float64(confusion[c][0] + confusion[c][1])

	cr := ClassReport{Name: name, Support: int(actual)}
	if predicted > 0 {
		cr.Precision = tp / predicted
	}
	if actual > 0 {
		cr.Recall = tp / actual
	}
	if cr.Precision+cr.Recall > 0 {
		cr.F1 = 2 * cr.Precision * cr.Recall / (cr.Precision + cr.Recall)
	}
	return cr
}

// #endregion helpers
