package textmodel

import "math"

// #region scorer
// Scorer wraps a loaded artifact for single-text inference. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	artifact *Artifact
}

// Load reads the artifact at path and returns a Scorer over it.
func Load(path string) (*Scorer, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return &Scorer{artifact: a}, nil
}

// NewScorer wraps an in-memory artifact, e.g. one freshly trained.
func NewScorer(a *Artifact) *Scorer {
	return &Scorer{artifact: a}
}

// Score returns the positive-class probability and max(P(neg), P(pos)).
func (s *Scorer) Score(text string) (float64, float64) {
	proba := s.artifact.PredictProba([]string{text})[0]
	return proba[1], math.Max(proba[0], proba[1])
}

// Gate reports which gate the artifact was trained for.
func (s *Scorer) Gate() string {
	return s.artifact.Gate
}

// #endregion scorer
