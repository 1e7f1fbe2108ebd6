// Package deploy registers trained gate artifacts in the model registry and
// optionally uploads them to Azure Blob Storage.
package deploy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/store"
)

const (
	// EnvironmentName is the shared scoring environment for all gates.
	EnvironmentName = "fcs-classifier-env"
	// EnvironmentImage is the runtime image the gate server ships in.
	EnvironmentImage = "gcr.io/distroless/static-debian12:nonroot"
	// ManifestFile is written into the models directory by DeployAll.
	ManifestFile = "azure_models_config.json"
)

// ModelName is the registry name for a gate's classifier.
func ModelName(gateName string) string {
	return gateName + "-classifier"
}

// #region types
// ModelRef identifies one registered model version.
type ModelRef struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
	ID      string `json:"id"`
	BlobURL string `json:"blob_url,omitempty"`
}

// EnvironmentSpec describes a scoring environment to record.
type EnvironmentSpec struct {
	Name        string
	Image       string
	Description string
}

// EnvironmentRef identifies one recorded environment version.
type EnvironmentRef struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// Manifest is the JSON summary written by DeployAll.
type Manifest struct {
	Workspace      string              `json:"workspace"`
	ResourceGroup  string              `json:"resource_group"`
	SubscriptionID string              `json:"subscription_id"`
	Environment    EnvironmentRef      `json:"environment"`
	Models         map[string]ModelRef `json:"models"`
}

// #endregion types

// #region deployer
// Deployer ties the registry store to an artifact uploader.
type Deployer struct {
	store    *store.Store
	uploader Uploader
	azure    config.AzureConfig
	logger   *slog.Logger
}

// New returns a Deployer. A nil uploader keeps artifacts local.
func New(st *store.Store, uploader Uploader, azure config.AzureConfig, logger *slog.Logger) *Deployer {
	if uploader == nil {
		uploader = NopUploader{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{store: st, uploader: uploader, azure: azure, logger: logger}
}

// #endregion deployer

// #region register
// Register hashes the artifact at artifactPath, uploads it and records a
// new version of name in the registry.
func (d *Deployer) Register(ctx context.Context, name, artifactPath string) (ModelRef, error) {
	d.logger.Info("registering model", "name", name, "path", artifactPath)

	sum, size, err := hashFile(artifactPath)
	if err != nil {
		return ModelRef{}, err
	}

	blobName := path.Join(name, sum[:12], filepath.Base(artifactPath))
	url, err := d.uploader.Upload(ctx, artifactPath, blobName)
	if err != nil {
		return ModelRef{}, err
	}

	rec, err := d.store.RegisterModel(store.ModelRecord{
		Name:        name,
		Path:        artifactPath,
		BlobURL:     url,
		SHA256:      sum,
		SizeBytes:   size,
		Description: fmt.Sprintf("FCS %s classifier for Future Context Snapshot system", name),
	})
	if err != nil {
		return ModelRef{}, fmt.Errorf("register %s: %w", name, err)
	}
	d.logger.Info("model registered", "name", rec.Name, "version", rec.Version, "id", rec.ID)
	return ModelRef{Name: rec.Name, Version: rec.Version, ID: rec.ID, BlobURL: rec.BlobURL}, nil
}

// CreateEnvironment records a new version of the scoring environment.
func (d *Deployer) CreateEnvironment(ctx context.Context, spec EnvironmentSpec) (EnvironmentRef, error) {
	if err := ctx.Err(); err != nil {
		return EnvironmentRef{}, err
	}
	rec, err := d.store.CreateEnvironment(store.EnvironmentRecord{
		Name:        spec.Name,
		Image:       spec.Image,
		Description: spec.Description,
	})
	if err != nil {
		return EnvironmentRef{}, fmt.Errorf("create environment %s: %w", spec.Name, err)
	}
	d.logger.Info("environment created", "name", rec.Name, "version", rec.Version)
	return EnvironmentRef{Name: rec.Name, Version: rec.Version}, nil
}

// #endregion register

// #region deploy-all
// DeployAll creates the shared environment, registers every built-in gate
// artifact found in modelsDir and writes the manifest there. Missing
// artifacts are skipped with a warning.
func (d *Deployer) DeployAll(ctx context.Context, modelsDir string) (*Manifest, error) {
	env, err := d.CreateEnvironment(ctx, EnvironmentSpec{
		Name:        EnvironmentName,
		Image:       EnvironmentImage,
		Description: "Environment for FCS classifiers",
	})
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Workspace:      d.azure.Workspace,
		ResourceGroup:  d.azure.ResourceGroup,
		SubscriptionID: d.azure.SubscriptionID,
		Environment:    env,
		Models:         make(map[string]ModelRef),
	}

	for _, spec := range []gate.Spec{gate.DecisionGravity, gate.QuestionDepth, gate.ConsequenceDepth} {
		name := ModelName(spec.Name)
		artifactPath := filepath.Join(modelsDir, spec.ArtifactFile)
		if _, err := os.Stat(artifactPath); errors.Is(err, fs.ErrNotExist) {
			d.logger.Warn("model file not found, skipping", "name", name, "path", artifactPath)
			continue
		}
		ref, err := d.Register(ctx, name, artifactPath)
		if err != nil {
			return nil, err
		}
		manifest.Models[name] = ref
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(modelsDir, ManifestFile)
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	d.logger.Info("deployment complete", "environment", env.Name, "models", len(manifest.Models), "manifest", manifestPath)
	return manifest, nil
}

// #endregion deploy-all

// #region helpers
func hashFile(p string) (string, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", 0, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash artifact: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// #endregion helpers
