package train

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/fcs-gates/internal/eval"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/textmodel"
)

// RejectionGuidanceFile is written next to the question-depth model.
const RejectionGuidanceFile = "question_rejection_guidance.json"

// #region options
// Options locate the inputs and outputs of one training run.
type Options struct {
	DataPath  string  // JSONL label file
	OutputDir string  // artifacts are written here
	TestSize  float64 // held-out fraction, default 0.2
	Seed      uint64

	// MinAccuracy aborts the run before saving when held-out accuracy is
	// lower. Zero disables the check.
	MinAccuracy float64
	Logger      *slog.Logger
}

func (o *Options) setDefaults() {
	if o.TestSize <= 0 || o.TestSize >= 1 {
		o.TestSize = 0.2
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.OutputDir == "" {
		o.OutputDir = "outputs"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// #endregion options

// #region report
// Report summarizes one training run.
type Report struct {
	Gate           string          `json:"gate"`
	Examples       int             `json:"examples"`
	Negatives      int             `json:"negatives"`
	Positives      int             `json:"positives"`
	TrainSize      int             `json:"train_size"`
	TestSize       int             `json:"test_size"`
	Features       int             `json:"features"`
	Eval           eval.EvalResult `json:"eval"`
	Samples        []gate.Result   `json:"samples"`
	SampleTexts    []string        `json:"sample_texts"`
	ModelPath      string          `json:"model_path"`
	RejectionsPath string          `json:"rejections_path,omitempty"`
	RejectionCount int             `json:"rejection_count"`
}

// #endregion report

// #region run
// Run trains, evaluates and saves the classifier described by profile.
func Run(profile Profile, opts Options) (*Report, error) {
	opts.setDefaults()
	spec := profile.Spec
	log := opts.Logger.With("gate", spec.Name)

	examples, err := LoadExamplesFile(opts.DataPath)
	if err != nil {
		return nil, err
	}
	labels := BinaryLabels(examples, spec.Threshold)

	report := &Report{Gate: spec.Name, Examples: len(examples)}
	for _, l := range labels {
		if l == 1 {
			report.Positives++
		} else {
			report.Negatives++
		}
	}
	log.Info("loaded examples", "count", len(examples),
		profile.NegativeName, report.Negatives, profile.PositiveName, report.Positives)

	trainIdx, testIdx := StratifiedSplit(labels, opts.TestSize, opts.Seed)
	report.TrainSize, report.TestSize = len(trainIdx), len(testIdx)

	trainTexts := make([]string, len(trainIdx))
	trainLabels := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainTexts[i] = examples[idx].Text
		trainLabels[i] = labels[idx]
	}

	artifact, err := Fit(spec.Name, trainTexts, trainLabels, profile.Vectorizer, profile.Logistic)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", spec.Name, err)
	}
	report.Features = artifact.Vectorizer.Dim()

	testTexts := make([]string, len(testIdx))
	testLabels := make([]int, len(testIdx))
	for i, idx := range testIdx {
		testTexts[i] = examples[idx].Text
		testLabels[i] = labels[idx]
	}
	probs := make([]float64, len(testTexts))
	for i, proba := range artifact.PredictProba(testTexts) {
		probs[i] = proba[1]
	}
	harness := eval.NewEvalHarness(eval.EvalConfig{Boundary: 0.5, MinAccuracy: opts.MinAccuracy})
	classNames := [2]string{
		fmt.Sprintf("%s (< %.1f)", profile.NegativeName, spec.Threshold),
		fmt.Sprintf("%s (>= %.1f)", profile.PositiveName, spec.Threshold),
	}
	report.Eval, err = harness.Run(testLabels, probs, classNames)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", spec.Name, err)
	}
	log.Info("evaluated classifier", "accuracy", report.Eval.Accuracy, "test_size", report.TestSize)
	if !report.Eval.Passed {
		return report, fmt.Errorf("%s: %s", spec.Name, report.Eval.Reason)
	}

	report.ModelPath = filepath.Join(opts.OutputDir, spec.ArtifactFile)
	if err := textmodel.SaveArtifact(report.ModelPath, artifact); err != nil {
		return nil, err
	}
	log.Info("saved model", "path", report.ModelPath)

	if profile.KeepRejections {
		records := RejectionRecords(examples)
		report.RejectionCount = len(records)
		report.RejectionsPath = filepath.Join(opts.OutputDir, RejectionGuidanceFile)
		if err := writeJSON(report.RejectionsPath, records); err != nil {
			return nil, err
		}
	}

	g := gate.NewGate(spec, textmodel.NewScorer(artifact), gate.WithJitter(gate.NoJitter))
	for _, text := range profile.SampleTexts {
		report.Samples = append(report.Samples, g.EvaluateText(text))
		report.SampleTexts = append(report.SampleTexts, text)
	}
	return report, nil
}

// Fit builds a vectorizer and classifier from labeled texts.
func Fit(gateName string, texts []string, labels []int, vcfg textmodel.VectorizerConfig, lcfg textmodel.LogisticConfig) (*textmodel.Artifact, error) {
	vec := textmodel.FitVectorizer(texts, vcfg)
	if vec.Dim() == 0 {
		return nil, errors.New("empty vocabulary after tokenization")
	}
	X := make([]textmodel.SparseVector, len(texts))
	for i, text := range texts {
		X[i] = vec.Transform(text)
	}
	clf, err := textmodel.FitLogistic(X, labels, vec.Dim(), lcfg)
	if err != nil {
		return nil, err
	}
	return &textmodel.Artifact{
		FormatVersion: textmodel.FormatVersion,
		Gate:          gateName,
		TrainedAt:     time.Now().UTC(),
		TrainSize:     len(texts),
		Vectorizer:    *vec,
		Classifier:    *clf,
	}, nil
}

// #endregion run

// #region train-all
// TrainAll trains the named gates concurrently. Label files are read from
// dataDir using each profile's default file name; base supplies the other
// options. Reports are returned in the order of names.
func TrainAll(ctx context.Context, names []string, dataDir string, base Options) ([]*Report, error) {
	reports := make([]*Report, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		profile, ok := ProfileFor(name)
		if !ok {
			return nil, fmt.Errorf("unknown gate %q", name)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := base
			opts.DataPath = filepath.Join(dataDir, profile.LabelFile)
			report, err := Run(profile, opts)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// #endregion train-all

// #region helpers
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// #endregion helpers
