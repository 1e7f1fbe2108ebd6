package store

import "time"

// #region model-record
// ModelRecord is one registered version of a gate classifier artifact.
type ModelRecord struct {
	ID          string
	Name        string
	Version     int
	Path        string // local artifact path at registration time
	BlobURL     string // empty when no upload was configured
	SHA256      string
	SizeBytes   int64
	Description string
	CreatedAt   time.Time
}
// #endregion model-record

// #region environment-record
// EnvironmentRecord describes the runtime a registered model is served in.
type EnvironmentRecord struct {
	Name        string
	Version     int
	Image       string
	Description string
	CreatedAt   time.Time
}
// #endregion environment-record

// #region decision-record
// DecisionRecord is one persisted gate evaluation.
type DecisionRecord struct {
	ID            int64
	RequestID     string
	Gate          string
	Transport     string // "http" | "grpc" | "mcp" | "cli"
	Decision      string
	PrimaryScore  float64
	Confidence    float64
	RejectionType string
	Error         string
	CreatedAt     time.Time
}
// #endregion decision-record
