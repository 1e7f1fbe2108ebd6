package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/store"
)

type recordingUploader struct {
	blobs []string
	err   error
}

func (u *recordingUploader) Upload(_ context.Context, _, blobName string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.blobs = append(u.blobs, blobName)
	return "https://acct.blob.core.windows.net/fcs-models/" + blobName, nil
}

func newDeployer(t *testing.T, up Uploader) *Deployer {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, up, config.AzureConfig{
		Workspace:      "fcs-ws",
		ResourceGroup:  "fcs-rg",
		SubscriptionID: "sub-123",
	}, nil)
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRegisterIncrementsVersion(t *testing.T) {
	up := &recordingUploader{}
	d := newDeployer(t, up)
	p := writeArtifact(t, t.TempDir(), "model.json.zst", "artifact-bytes")

	first, err := d.Register(context.Background(), "question-depth-classifier", p)
	require.NoError(t, err)
	second, err := d.Register(context.Background(), "question-depth-classifier", p)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, up.blobs, 2)
	assert.Contains(t, first.BlobURL, "question-depth-classifier/")
	assert.Contains(t, first.BlobURL, "model.json.zst")
}

func TestRegisterMissingFile(t *testing.T) {
	d := newDeployer(t, nil)
	_, err := d.Register(context.Background(), "m", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestRegisterUploadFailure(t *testing.T) {
	d := newDeployer(t, &recordingUploader{err: errors.New("denied")})
	p := writeArtifact(t, t.TempDir(), "m.json", "x")
	_, err := d.Register(context.Background(), "m", p)
	require.ErrorContains(t, err, "denied")
}

func TestNopUploaderRecordsNoURL(t *testing.T) {
	d := newDeployer(t, nil)
	p := writeArtifact(t, t.TempDir(), "m.json", "x")
	ref, err := d.Register(context.Background(), "m", p)
	require.NoError(t, err)
	assert.Empty(t, ref.BlobURL)

	rec, err := d.store.LatestModel("m")
	require.NoError(t, err)
	assert.Len(t, rec.SHA256, 64)
	assert.EqualValues(t, 1, rec.SizeBytes)
}

func TestCreateEnvironment(t *testing.T) {
	d := newDeployer(t, nil)
	env, err := d.CreateEnvironment(context.Background(), EnvironmentSpec{Name: EnvironmentName, Image: EnvironmentImage})
	require.NoError(t, err)
	assert.Equal(t, EnvironmentRef{Name: EnvironmentName, Version: 1}, env)
}

func TestDeployAllSkipsMissingAndWritesManifest(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, gate.DecisionGravity.ArtifactFile, "dg")
	writeArtifact(t, dir, gate.ConsequenceDepth.ArtifactFile, "cd")

	d := newDeployer(t, &recordingUploader{})
	manifest, err := d.DeployAll(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, manifest.Models, 2)
	assert.Contains(t, manifest.Models, "decision-gravity-classifier")
	assert.Contains(t, manifest.Models, "consequence-depth-classifier")
	assert.NotContains(t, manifest.Models, "question-depth-classifier")
	assert.Equal(t, EnvironmentRef{Name: "fcs-classifier-env", Version: 1}, manifest.Environment)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "fcs-ws", onDisk["workspace"])
	assert.Equal(t, "fcs-rg", onDisk["resource_group"])
	assert.Equal(t, "sub-123", onDisk["subscription_id"])
}

func TestUploaderFromConfigDisabled(t *testing.T) {
	up, err := UploaderFromConfig(context.Background(), config.AzureConfig{})
	require.NoError(t, err)
	assert.IsType(t, NopUploader{}, up)
}
