package eval

// #region eval-config
// EvalConfig holds the thresholds a classifier must meet on held-out data.
type EvalConfig struct {
	Boundary    float64 // P(positive) above this predicts the positive class
	MinAccuracy float64 // fail the run below this accuracy; 0 disables
}

// DefaultEvalConfig predicts with the classifier's own 0.5 boundary and
// never fails on accuracy.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Boundary:    0.5,
		MinAccuracy: 0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// ClassReport holds per-class metrics.
type ClassReport struct {
	Name      string  `json:"name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the outcome of scoring a labeled set.
type EvalResult struct {
	Passed           bool           `json:"passed"`
	Accuracy         float64        `json:"accuracy"`
	Classes          [2]ClassReport `json:"classes"`
	Confusion        [2][2]int      `json:"confusion"` // [actual][predicted]
	MeanPositiveProb float64        `json:"mean_positive_prob"`
	StdPositiveProb  float64        `json:"std_positive_prob"`
	Metrics          []EvalMetric   `json:"metrics"`
	Reason           string         `json:"reason"`
}

// #endregion eval-result
