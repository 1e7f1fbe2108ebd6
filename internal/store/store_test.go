package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterModelIncrementsVersion(t *testing.T) {
	s := tempDB(t)

	first, err := s.RegisterModel(ModelRecord{Name: "question-depth-classifier", Path: "a.json.zst", SHA256: "aa", SizeBytes: 10})
	if err != nil {
		t.Fatalf("RegisterModel: %v", err)
	}
	second, err := s.RegisterModel(ModelRecord{Name: "question-depth-classifier", Path: "b.json.zst", SHA256: "bb", SizeBytes: 12})
	if err != nil {
		t.Fatalf("RegisterModel: %v", err)
	}
	other, err := s.RegisterModel(ModelRecord{Name: "decision-gravity-classifier", Path: "c.json.zst", SHA256: "cc"})
	if err != nil {
		t.Fatalf("RegisterModel: %v", err)
	}

	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("expected versions 1, 2; got %d, %d", first.Version, second.Version)
	}
	if other.Version != 1 {
		t.Errorf("versions are per name, got %d", other.Version)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Errorf("expected distinct ids, got %q and %q", first.ID, second.ID)
	}
}

func TestLatestModel(t *testing.T) {
	s := tempDB(t)
	s.RegisterModel(ModelRecord{Name: "m", Path: "v1", SHA256: "1"})
	s.RegisterModel(ModelRecord{Name: "m", Path: "v2", SHA256: "2", BlobURL: "https://x/m", Description: "second"})

	got, err := s.LatestModel("m")
	if err != nil {
		t.Fatalf("LatestModel: %v", err)
	}
	if got.Version != 2 || got.Path != "v2" || got.BlobURL != "https://x/m" || got.Description != "second" {
		t.Errorf("unexpected latest %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to round-trip")
	}

	if _, err := s.LatestModel("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListModelsFiltersByName(t *testing.T) {
	s := tempDB(t)
	s.RegisterModel(ModelRecord{Name: "a", Path: "p", SHA256: "1"})
	s.RegisterModel(ModelRecord{Name: "b", Path: "p", SHA256: "2"})
	s.RegisterModel(ModelRecord{Name: "a", Path: "p", SHA256: "3"})

	all, err := s.ListModels("", 10)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 models, got %d", len(all))
	}

	onlyA, err := s.ListModels("a", 10)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(onlyA) != 2 {
		t.Fatalf("expected 2 models named a, got %d", len(onlyA))
	}
	for _, m := range onlyA {
		if m.Name != "a" {
			t.Errorf("unexpected model %s", m.Name)
		}
	}

	limited, _ := s.ListModels("", 1)
	if len(limited) != 1 {
		t.Errorf("expected limit 1, got %d", len(limited))
	}
}

func TestCreateEnvironmentIncrementsVersion(t *testing.T) {
	s := tempDB(t)
	env := EnvironmentRecord{Name: "fcs-classifier-env", Image: "gcr.io/distroless/static", Description: "gate scoring runtime"}

	v1, err := s.CreateEnvironment(env)
	if err != nil {
		t.Fatalf("CreateEnvironment: %v", err)
	}
	v2, err := s.CreateEnvironment(env)
	if err != nil {
		t.Fatalf("CreateEnvironment: %v", err)
	}
	if v1.Version != 1 || v2.Version != 2 {
		t.Fatalf("expected versions 1, 2; got %d, %d", v1.Version, v2.Version)
	}
}

func TestListDecisions(t *testing.T) {
	s := tempDB(t)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, gate := range []string{"question-depth", "decision-gravity", "question-depth"} {
		_, err := s.DB().Exec(
			`INSERT INTO gate_decisions (request_id, gate, transport, decision, primary_score, confidence, rejection_type, created_at)
			 VALUES ('r', ?, 'http', 'REJECT', 0.2, 0.8, 'binary', ?)`, gate, now,
		)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	recs, err := s.ListDecisions("question-depth", 10)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(recs))
	}
	if recs[0].ID < recs[1].ID {
		t.Error("expected newest first")
	}
	if recs[0].RejectionType != "binary" || recs[0].PrimaryScore != 0.2 || recs[0].Error != "" {
		t.Errorf("unexpected record %+v", recs[0])
	}

	all, _ := s.ListDecisions("", 10)
	if len(all) != 3 {
		t.Errorf("expected 3 decisions, got %d", len(all))
	}
}

func TestNewStoreBadPath(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "x.db")); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
