package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
)

// #region log-decision
// LogDecision writes a decision entry to the gate_decisions table. Scores are
// stored as NULL for error results.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var score, confidence any
	if entry.Error == "" {
		score, confidence = entry.PrimaryScore, entry.Confidence
	}

	_, err := db.Exec(
		`INSERT INTO gate_decisions (request_id, gate, transport, decision, primary_score, confidence, rejection_type, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.Gate,
		entry.Transport,
		entry.Decision,
		score,
		confidence,
		nullIfEmpty(entry.RejectionType),
		nullIfEmpty(entry.Error),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
// #endregion log-decision

// #region from-result
// EntryFromResult flattens a gate result into a log entry.
func EntryFromResult(requestID, transport string, res gate.Result) DecisionEntry {
	return DecisionEntry{
		RequestID:     requestID,
		Gate:          res.Gate,
		Transport:     transport,
		Decision:      res.Decision,
		PrimaryScore:  res.PrimaryScore,
		Confidence:    res.Confidence,
		RejectionType: string(res.RejectionType),
		Error:         res.Error,
	}
}
// #endregion from-result

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
