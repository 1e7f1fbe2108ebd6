package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS models (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	version      INTEGER NOT NULL,
	path         TEXT NOT NULL,
	blob_url     TEXT,
	sha256       TEXT NOT NULL,
	size_bytes   INTEGER NOT NULL,
	description  TEXT,
	created_at   TEXT NOT NULL,
	UNIQUE (name, version)
);

CREATE TABLE IF NOT EXISTS environments (
	name         TEXT NOT NULL,
	version      INTEGER NOT NULL,
	image        TEXT NOT NULL,
	description  TEXT,
	created_at   TEXT NOT NULL,
	PRIMARY KEY (name, version)
);

CREATE TABLE IF NOT EXISTS gate_decisions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id     TEXT NOT NULL,
	gate           TEXT NOT NULL,
	transport      TEXT NOT NULL,
	decision       TEXT NOT NULL,
	primary_score  REAL,
	confidence     REAL,
	rejection_type TEXT,
	error          TEXT,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gate_decisions_gate ON gate_decisions(gate, created_at);
`
// #endregion schema

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// #region store-struct
// Store persists the model registry and the gate decision log in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for the decision logger.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region register-model
// RegisterModel records a new version of rec.Name. ID, Version and
// CreatedAt are assigned here and returned in the stored record.
func (s *Store) RegisterModel(rec ModelRecord) (ModelRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return ModelRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var latest int
	err = tx.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM models WHERE name = ?`, rec.Name).Scan(&latest)
	if err != nil {
		return ModelRecord{}, fmt.Errorf("latest version of %s: %w", rec.Name, err)
	}

	rec.ID = uuid.New().String()
	rec.Version = latest + 1
	rec.CreatedAt = time.Now().UTC()

	_, err = tx.Exec(
		`INSERT INTO models (id, name, version, path, blob_url, sha256, size_bytes, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Version, rec.Path, nullIfEmpty(rec.BlobURL), rec.SHA256,
		rec.SizeBytes, nullIfEmpty(rec.Description), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return ModelRecord{}, fmt.Errorf("insert model: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ModelRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}
// #endregion register-model

// #region get-model
// LatestModel returns the highest registered version of name.
func (s *Store) LatestModel(name string) (ModelRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, name, version, path, blob_url, sha256, size_bytes, description, created_at
		 FROM models WHERE name = ? ORDER BY version DESC LIMIT 1`, name,
	)
	rec, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelRecord{}, fmt.Errorf("model %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return ModelRecord{}, fmt.Errorf("get model %s: %w", name, err)
	}
	return rec, nil
}
// #endregion get-model

// #region list-models
// ListModels returns registered models, newest first. An empty name lists
// every model.
func (s *Store) ListModels(name string, limit int) ([]ModelRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, name, version, path, blob_url, sha256, size_bytes, description, created_at
		 FROM models WHERE (? = '' OR name = ?)
		 ORDER BY created_at DESC, version DESC LIMIT ?`, name, name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var records []ModelRecord
	for rows.Next() {
		rec, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-models

// #region environments
// CreateEnvironment records a new version of rec.Name.
func (s *Store) CreateEnvironment(rec EnvironmentRecord) (EnvironmentRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return EnvironmentRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var latest int
	err = tx.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM environments WHERE name = ?`, rec.Name).Scan(&latest)
	if err != nil {
		return EnvironmentRecord{}, fmt.Errorf("latest version of %s: %w", rec.Name, err)
	}
	rec.Version = latest + 1
	rec.CreatedAt = time.Now().UTC()

	_, err = tx.Exec(
		`INSERT INTO environments (name, version, image, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Name, rec.Version, rec.Image, nullIfEmpty(rec.Description), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return EnvironmentRecord{}, fmt.Errorf("insert environment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return EnvironmentRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}
// #endregion environments

// #region list-decisions
// ListDecisions returns the most recent gate decisions, optionally for one gate.
func (s *Store) ListDecisions(gate string, limit int) ([]DecisionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, request_id, gate, transport, decision, primary_score, confidence, rejection_type, error, created_at
		 FROM gate_decisions WHERE (? = '' OR gate = ?)
		 ORDER BY id DESC LIMIT ?`, gate, gate, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var score, confidence sql.NullFloat64
		var rejection, errMsg sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Gate, &rec.Transport, &rec.Decision,
			&score, &confidence, &rejection, &errMsg, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.PrimaryScore = score.Float64
		rec.Confidence = confidence.Float64
		rec.RejectionType = rejection.String
		rec.Error = errMsg.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-decisions

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanModel(row scanner) (ModelRecord, error) {
	var rec ModelRecord
	var blobURL, description sql.NullString
	var createdStr string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Version, &rec.Path, &blobURL, &rec.SHA256,
		&rec.SizeBytes, &description, &createdStr); err != nil {
		return ModelRecord{}, err
	}
	rec.BlobURL = blobURL.String
	rec.Description = description.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
