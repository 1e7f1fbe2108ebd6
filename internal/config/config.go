// Package config loads runtime settings from the environment, an optional
// .env file and an optional YAML gates file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
)

// Defaults used when the corresponding variable is unset.
const (
	DefaultModelDir  = "outputs"
	DefaultDBPath    = "fcs_gates.db"
	DefaultHTTPAddr  = ":8080"
	DefaultGRPCAddr  = ":50061"
	DefaultContainer = "fcs-models"
)

// #region config
// AzureConfig holds the deployment target settings.
type AzureConfig struct {
	StorageAccountURL string
	Container         string
	TenantID          string
	SubscriptionID    string
	ResourceGroup     string
	Workspace         string
}

// UploadEnabled reports whether artifacts should be pushed to blob storage.
func (a AzureConfig) UploadEnabled() bool {
	return a.StorageAccountURL != ""
}

// Config is the process configuration.
type Config struct {
	ModelDir  string
	DBPath    string
	HTTPAddr  string
	GRPCAddr  string
	GatesFile string
	LogLevel  string
	Azure     AzureConfig
}

// #endregion config

// #region load
// Load reads envFile (if it exists) into the environment, then builds a
// Config from environment variables. Variables already set win over the
// file. An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		ModelDir:  envOr("FCS_MODEL_DIR", DefaultModelDir),
		DBPath:    envOr("FCS_DB", DefaultDBPath),
		HTTPAddr:  envOr("FCS_HTTP_ADDR", DefaultHTTPAddr),
		GRPCAddr:  envOr("FCS_GRPC_ADDR", DefaultGRPCAddr),
		GatesFile: os.Getenv("FCS_GATES_FILE"),
		LogLevel:  envOr("FCS_LOG_LEVEL", "info"),
		Azure: AzureConfig{
			StorageAccountURL: os.Getenv("AZURE_STORAGE_ACCOUNT_URL"),
			Container:         envOr("AZURE_STORAGE_CONTAINER", DefaultContainer),
			TenantID:          os.Getenv("AZURE_TENANT_ID"),
			SubscriptionID:    os.Getenv("AZURE_SUBSCRIPTION_ID"),
			ResourceGroup:     os.Getenv("AZURE_RESOURCE_GROUP"),
			Workspace:         os.Getenv("AZUREML_WORKSPACE"),
		},
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region gates-file
// GateEntry is one gate's settings in the YAML gates file.
type GateEntry struct {
	Artifact string `yaml:"artifact,omitempty"`
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

// GatesFile is the YAML document shape:
//
//	gates:
//	  question-depth:
//	    artifact: models/qd.json.zst
//	  consequence-depth:
//	    enabled: false
type GatesFile struct {
	Gates map[string]GateEntry `yaml:"gates"`
}

// GateBinding pairs a gate spec with the artifact to load for it.
type GateBinding struct {
	Spec         gate.Spec
	ArtifactPath string
}

// Gates resolves which gates to serve. Without a gates file every built-in
// gate is enabled with its default artifact under ModelDir. Relative
// artifact paths in the file are resolved against ModelDir.
func (c Config) Gates() ([]GateBinding, error) {
	entries := map[string]GateEntry{}
	if c.GatesFile != "" {
		data, err := os.ReadFile(c.GatesFile)
		if err != nil {
			return nil, fmt.Errorf("read gates file: %w", err)
		}
		var f GatesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse gates file %s: %w", c.GatesFile, err)
		}
		var unknown []string
		for name := range f.Gates {
			if _, ok := gate.ByName(name); !ok {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, fmt.Errorf("gates file %s: unknown gates %s", c.GatesFile, strings.Join(unknown, ", "))
		}
		entries = f.Gates
	}

	var out []GateBinding
	for _, spec := range gate.Specs() {
		entry := entries[spec.Name]
		if entry.Enabled != nil && !*entry.Enabled {
			continue
		}
		path := entry.Artifact
		if path == "" {
			path = spec.ArtifactFile
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.ModelDir, path)
		}
		out = append(out, GateBinding{Spec: spec, ArtifactPath: path})
	}
	return out, nil
}

// #endregion gates-file
