package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a gate regression fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one text with the decision a gate is expected to reach.
type FixtureCase struct {
	ID       string `json:"id"`
	Gate     string `json:"gate"`
	Text     string `json:"text"`
	Expect   string `json:"expect"`                     // pass or fail label
	Rejected string `json:"expect_rejection,omitempty"` // question-depth only
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file. Every case must name a
// built-in gate and expect one of that gate's two labels.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, c := range f.Cases {
		if c.Gate == "" || c.Expect == "" {
			return nil, fmt.Errorf("fixture %s: case %d (%s) needs gate and expect", path, i, c.ID)
		}
		spec, ok := gate.ByName(c.Gate)
		if !ok {
			return nil, fmt.Errorf("fixture %s: case %d (%s) names unknown gate %q", path, i, c.ID, c.Gate)
		}
		if c.Expect != spec.PassLabel && c.Expect != spec.FailLabel {
			return nil, fmt.Errorf("fixture %s: case %d (%s) expects %q, %s decides %s or %s",
				path, i, c.ID, c.Expect, c.Gate, spec.PassLabel, spec.FailLabel)
		}
	}
	return &f, nil
}

// #endregion fixture-loader
