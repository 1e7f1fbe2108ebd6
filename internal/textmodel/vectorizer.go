package textmodel

import (
	"math"
	"sort"
)

// #region types
// VectorizerConfig controls vocabulary construction.
type VectorizerConfig struct {
	MaxFeatures int
	NgramMin    int
	NgramMax    int
	MinDF       int
}

// SparseVector is a feature vector holding only its non-zero entries.
type SparseVector struct {
	Index []int
	Value []float64
}

// Vectorizer maps text to L2-normalized TF-IDF vectors over a fixed vocabulary.
type Vectorizer struct {
	NgramMin   int            `json:"ngram_min"`
	NgramMax   int            `json:"ngram_max"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// #endregion types

// #region fit
// FitVectorizer builds the vocabulary and idf weights from docs. The
// vocabulary keeps the MaxFeatures most frequent terms (ties alphabetical)
// whose document frequency is at least MinDF; indices are assigned in
// alphabetical term order.
func FitVectorizer(docs []string, cfg VectorizerConfig) *Vectorizer {
	if cfg.MinDF < 1 {
		cfg.MinDF = 1
	}
	totals := make(map[string]int)
	dfs := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Analyze(doc, cfg.NgramMin, cfg.NgramMax) {
			totals[term]++
			if !seen[term] {
				seen[term] = true
				dfs[term]++
			}
		}
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		if dfs[term] >= cfg.MinDF {
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if cfg.MaxFeatures > 0 && len(terms) > cfg.MaxFeatures {
		terms = terms[:cfg.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		NgramMin:   cfg.NgramMin,
		NgramMax:   cfg.NgramMax,
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(dfs[term]))) + 1
	}
	return v
}

// #endregion fit

// #region transform
// Transform converts text to a sparse TF-IDF vector. Terms outside the
// vocabulary are ignored; an all-unknown text yields an empty vector.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range Analyze(text, v.NgramMin, v.NgramMax) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Index: make([]int, 0, len(counts)),
		Value: make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Index = append(vec.Index, idx)
	}
	sort.Ints(vec.Index)

	var norm float64
	for _, idx := range vec.Index {
		w := counts[idx] * v.IDF[idx]
		vec.Value = append(vec.Value, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Value {
			vec.Value[i] /= norm
		}
	}
	return vec
}

// Dim is the vocabulary size.
func (v *Vectorizer) Dim() int {
	return len(v.IDF)
}

// #endregion transform

// #region helpers
// dot computes w·x for a sparse x.
func dot(w []float64, x SparseVector) float64 {
	var sum float64
	for i, idx := range x.Index {
		sum += w[idx] * x.Value[i]
	}
	return sum
}

// #endregion helpers
