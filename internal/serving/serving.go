// Package serving loads configured gates for the server and CLI.
package serving

import (
	"io"
	"log/slog"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/textmodel"
)

// LoadGates loads one artifact per binding. The first failure aborts and
// is returned as a *textmodel.ArtifactLoadError.
func LoadGates(bindings []config.GateBinding, logger *slog.Logger, opts ...gate.Option) ([]*gate.Gate, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gates := make([]*gate.Gate, 0, len(bindings))
	for _, b := range bindings {
		scorer, err := textmodel.Load(b.ArtifactPath)
		if err != nil {
			return nil, err
		}
		if scorer.Gate() != b.Spec.Name {
			logger.Warn("artifact trained for a different gate", "gate", b.Spec.Name, "artifact_gate", scorer.Gate(), "path", b.ArtifactPath)
		}
		logger.Info("gate loaded", "gate", b.Spec.Name, "path", b.ArtifactPath)
		gates = append(gates, gate.NewGate(b.Spec, scorer, opts...))
	}
	return gates, nil
}

// NewLogger returns a JSON slog logger at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
