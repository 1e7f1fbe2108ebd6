package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/rpc"
)

// runCLI executes gatectl with args against an isolated model dir and DB.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FCS_MODEL_DIR", filepath.Join(dir, "outputs"))
	t.Setenv("FCS_DB", filepath.Join(dir, "gates.db"))
	t.Setenv("FCS_GATES_FILE", "")
	t.Setenv("AZURE_STORAGE_ACCOUNT_URL", "")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeLabels(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	for _, noun := range []string{"house", "garden", "river", "city", "studio", "harbor", "orchard", "bakery"} {
		fmt.Fprintf(&b, `{"text": "I might find myself grieving the quiet mornings in the %s", "score": 0.9}`+"\n", noun)
		fmt.Fprintf(&b, `{"text": "Perhaps a tender loneliness lingers around the %s", "score": 0.8}`+"\n", noun)
		fmt.Fprintf(&b, `{"text": "ok %s", "score": 0.1}`+"\n", noun)
		fmt.Fprintf(&b, `{"text": "%s sure", "score": 0.2}`+"\n", noun)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

func TestTrainScoreDeployFlow(t *testing.T) {
	dir := t.TempDir()
	labels := filepath.Join(dir, "cd.jsonl")
	writeLabels(t, labels)

	out, err := runCLI(t, dir, "train", "consequence-depth", "--data", labels)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "consequence-depth", report["gate"])

	out, err = runCLI(t, dir, "score", "consequence-depth", "I might find myself grieving the quiet mornings in the house", "--no-jitter", "--record")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Contains(t, res, "consequence_depth_score")
	assert.Contains(t, []any{"APPROVE", "TERMINATE"}, res["gate_decision"])

	out, err = runCLI(t, dir, "decisions", "--json")
	require.NoError(t, err)
	var decisions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decisions))
	require.Len(t, decisions, 1)
	assert.Equal(t, "cli", decisions[0]["Transport"])

	out, err = runCLI(t, dir, "deploy")
	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	models, ok := manifest["models"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, models, 1)
	assert.Contains(t, models, "consequence-depth-classifier")

	out, err = runCLI(t, dir, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "consequence-depth-classifier")
}

func TestScoreUnknownGate(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "score", "tone-check", "hello")
	require.ErrorContains(t, err, "unknown gate")
}

func TestScoreMissingArtifact(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "score", "question-depth", "Will I be happy?")
	require.Error(t, err)
}

type fixedScorer float64

func (p fixedScorer) Score(string) (float64, float64) {
	return float64(p), max(float64(p), 1-float64(p))
}

func TestScoreRemote(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := rpc.NewGRPCServer([]*gate.Gate{
		gate.NewGate(gate.QuestionDepth, fixedScorer(0.2), gate.WithJitter(gate.NoJitter)),
	}, nil, nil)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	out, err := runCLI(t, t.TempDir(), "score", "question-depth", "Will I be happy?", "--remote", lis.Addr().String())
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "REJECT", res["gate_decision"])
	assert.Equal(t, 0.2, res["depth_score"])
	assert.Equal(t, "predictive", res["rejection_type"])

	_, err = runCLI(t, t.TempDir(), "score", "decision-gravity", "leaving my career", "--remote", lis.Addr().String())
	require.ErrorContains(t, err, "NotFound")

	_, err = runCLI(t, t.TempDir(), "score", "question-depth", "Will I?", "--remote", lis.Addr().String(), "--record")
	require.Error(t, err)
}

func TestTrainNeedsGateOrAll(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "train")
	require.Error(t, err)
}

func TestReplayReportsRegression(t *testing.T) {
	dir := t.TempDir()
	labels := filepath.Join(dir, "cd.jsonl")
	writeLabels(t, labels)
	_, err := runCLI(t, dir, "train", "consequence-depth", "--data", labels)
	require.NoError(t, err)

	fixture := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(fixture, []byte(`{"cases": [
		{"id": "empty", "gate": "consequence-depth", "text": "", "expect": "APPROVE"}
	]}`), 0644))

	_, err = runCLI(t, dir, "replay", fixture)
	var regression *RegressionError
	require.True(t, errors.As(err, &regression), "expected RegressionError, got %v", err)
	assert.Equal(t, 1, regression.Mismatches)
}
