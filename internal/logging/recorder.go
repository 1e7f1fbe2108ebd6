package logging

import (
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
)

// #region recorder
// Recorder logs every gate result through slog and, when a database is
// attached, persists it to the decision log. Persistence failures are
// logged and otherwise ignored so they never change a response.
type Recorder struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRecorder returns a Recorder. db may be nil.
func NewRecorder(db *sql.DB, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, logger: logger}
}

// Record logs res and returns the request id it was stored under. An empty
// requestID is replaced with a fresh uuid.
func (r *Recorder) Record(transport, requestID string, res gate.Result) string {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	attrs := []any{
		"request_id", requestID,
		"gate", res.Gate,
		"transport", transport,
		"decision", res.Decision,
	}
	if res.Error != "" {
		r.logger.Warn("gate evaluation failed", append(attrs, "error", res.Error)...)
	} else {
		attrs = append(attrs, "score", res.PrimaryScore, "confidence", res.Confidence)
		if res.RejectionType != "" {
			attrs = append(attrs, "rejection_type", string(res.RejectionType))
		}
		r.logger.Info("gate decision", attrs...)
	}

	if r.db == nil {
		return requestID
	}
	if err := LogDecision(r.db, EntryFromResult(requestID, transport, res)); err != nil {
		r.logger.Error("persist decision", "request_id", requestID, "err", err)
	}
	return requestID
}
// #endregion recorder
