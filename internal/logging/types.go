package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the gate_decisions table.
type DecisionEntry struct {
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
// #endregion decision-entry
