package textmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// #region types
// LogisticConfig controls logistic regression fitting.
type LogisticConfig struct {
	C             float64 // inverse L2 regularization strength
	MaxIter       int
	BalanceWeight bool // weight classes by n / (2 * count_c)
}

// DefaultLogisticConfig mirrors the training profile used for every gate.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{C: 1.0, MaxIter: 1000, BalanceWeight: true}
}

// LogisticRegression is a fitted binary linear classifier. Class 1 is positive.
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// ErrSingleClass is returned when training labels contain only one class.
var ErrSingleClass = errors.New("training labels contain a single class")

// #endregion types

// #region fit
// FitLogistic minimizes 0.5*|w|^2 + C * sum_i sw_i * logloss_i with L-BFGS.
// The intercept is not penalized. y holds 0/1 labels.
func FitLogistic(X []SparseVector, y []int, dim int, cfg LogisticConfig) (*LogisticRegression, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("fit logistic: %d samples but %d labels", len(X), len(y))
	}
	if cfg.C <= 0 {
		cfg.C = 1.0
	}

	var pos int
	for _, label := range y {
		if label == 1 {
			pos++
		}
	}
	neg := len(y) - pos
	if pos == 0 || neg == 0 {
		return nil, ErrSingleClass
	}

	classWeight := [2]float64{1, 1}
	if cfg.BalanceWeight {
		n := float64(len(y))
		classWeight[0] = n / (2 * float64(neg))
		classWeight[1] = n / (2 * float64(pos))
	}

	// signs[i] is +1 for positives and -1 for negatives.
	signs := make([]float64, len(y))
	weights := make([]float64, len(y))
	for i, label := range y {
		signs[i] = -1
		if label == 1 {
			signs[i] = 1
		}
		weights[i] = classWeight[label]
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			w, b := params[:dim], params[dim]
			loss := 0.5 * floats.Dot(w, w)
			for i, x := range X {
				margin := signs[i] * (dot(w, x) + b)
				loss += cfg.C * weights[i] * logOnePlusExpNeg(margin)
			}
			return loss
		},
		Grad: func(grad, params []float64) {
			w, b := params[:dim], params[dim]
			copy(grad[:dim], w)
			grad[dim] = 0
			for i, x := range X {
				margin := signs[i] * (dot(w, x) + b)
				coeff := -cfg.C * weights[i] * signs[i] * sigmoid(-margin)
				for j, idx := range x.Index {
					grad[idx] += coeff * x.Value[j]
				}
				grad[dim] += coeff
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   cfg.MaxIter,
		GradientThreshold: 1e-4,
	}
	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("fit logistic: %w", err)
	}
	// Iteration limits and line-search stalls still leave a usable optimum.

	coef := make([]float64, dim)
	copy(coef, result.X[:dim])
	return &LogisticRegression{Coef: coef, Intercept: result.X[dim]}, nil
}

// #endregion fit

// #region predict
// ProbaPositive returns P(class 1 | x).
func (m *LogisticRegression) ProbaPositive(x SparseVector) float64 {
	return sigmoid(dot(m.Coef, x) + m.Intercept)
}

// #endregion predict

// #region helpers
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logOnePlusExpNeg computes log(1 + exp(-m)) without overflow.
func logOnePlusExpNeg(m float64) float64 {
	if m > 0 {
		return math.Log1p(math.Exp(-m))
	}
	return -m + math.Log1p(math.Exp(m))
}

// #endregion helpers
