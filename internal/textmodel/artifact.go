package textmodel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// FormatVersion is the artifact layout this package reads and writes.
const FormatVersion = 1

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// #region errors
// ErrArtifactLoad matches every ArtifactLoadError via errors.Is.
var ErrArtifactLoad = errors.New("artifact load failed")

// ArtifactLoadError reports a missing, corrupt or incompatible model artifact.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

func (e *ArtifactLoadError) Is(target error) bool { return target == ErrArtifactLoad }

// #endregion errors

// #region artifact
// Artifact is the serialized form of a trained text classifier.
type Artifact struct {
	FormatVersion int                `json:"format_version"`
	Gate          string             `json:"gate"`
	TrainedAt     time.Time          `json:"trained_at"`
	TrainSize     int                `json:"train_size"`
	Vectorizer    Vectorizer         `json:"vectorizer"`
	Classifier    LogisticRegression `json:"classifier"`
}

// validate checks the invariants PredictProba relies on.
func (a *Artifact) validate() error {
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported format version %d", a.FormatVersion)
	}
	dim := len(a.Vectorizer.IDF)
	if dim == 0 {
		return errors.New("empty vocabulary")
	}
	if len(a.Vectorizer.Vocabulary) != dim {
		return fmt.Errorf("vocabulary has %d terms but idf has %d", len(a.Vectorizer.Vocabulary), dim)
	}
	if len(a.Classifier.Coef) != dim {
		return fmt.Errorf("classifier has %d coefficients for %d features", len(a.Classifier.Coef), dim)
	}
	for term, idx := range a.Vectorizer.Vocabulary {
		if idx < 0 || idx >= dim {
			return fmt.Errorf("term %q has out-of-range index %d", term, idx)
		}
	}
	if a.Vectorizer.NgramMin < 1 || a.Vectorizer.NgramMax < a.Vectorizer.NgramMin {
		return fmt.Errorf("invalid n-gram range [%d, %d]", a.Vectorizer.NgramMin, a.Vectorizer.NgramMax)
	}
	return nil
}

// PredictProba returns [P(negative), P(positive)] for each text.
func (a *Artifact) PredictProba(texts []string) [][2]float64 {
	out := make([][2]float64, len(texts))
	for i, text := range texts {
		p := a.Classifier.ProbaPositive(a.Vectorizer.Transform(text))
		out[i] = [2]float64{1 - p, p}
	}
	return out
}

// #endregion artifact

// #region save
// SaveArtifact writes a as JSON to path, zstd-compressed when path ends in ".zst".
func SaveArtifact(path string, a *Artifact) error {
	if a.FormatVersion == 0 {
		a.FormatVersion = FormatVersion
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if strings.HasSuffix(path, ".zst") {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return fmt.Errorf("compress artifact: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("compress artifact: %w", err)
		}
		data = buf.Bytes()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// #endregion save

// #region load
// LoadArtifact reads and validates an artifact. Compression is detected from
// the content, not the file name. All failures are *ArtifactLoadError.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &ArtifactLoadError{Path: path, Err: err}
		}
		data, err = io.ReadAll(dec)
		dec.Close()
		if err != nil {
			return nil, &ArtifactLoadError{Path: path, Err: fmt.Errorf("decompress: %w", err)}
		}
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := a.validate(); err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	return &a, nil
}

// #endregion load
