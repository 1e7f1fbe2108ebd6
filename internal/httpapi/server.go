// Package httpapi exposes the gates over HTTP.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/logging"
)

// maxBodyBytes caps a scoring request body.
const maxBodyBytes = 1 << 20

// #region server
// Server routes HTTP requests to the loaded gates.
type Server struct {
	gates    map[string]*gate.Gate
	recorder *logging.Recorder
	router   *chi.Mux
}

// New builds the router. recorder may be nil to skip decision logging.
func New(gates []*gate.Gate, recorder *logging.Recorder) *Server {
	s := &Server{
		gates:    make(map[string]*gate.Gate, len(gates)),
		recorder: recorder,
		router:   chi.NewRouter(),
	}
	for _, g := range gates {
		s.gates[g.Spec().Name] = g
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1/gates", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/{gate}/score", s.handleScore)
	})
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// #endregion server

// #region handlers
type gateInfo struct {
	Name       string   `json:"name"`
	ScoreField string   `json:"score_field"`
	Threshold  float64  `json:"threshold"`
	PassLabel  string   `json:"pass_label"`
	FailLabel  string   `json:"fail_label"`
	Dimensions []string `json:"dimensions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "gates": len(s.gates)})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]gateInfo, 0, len(s.gates))
	for _, g := range s.gates {
		spec := g.Spec()
		info := gateInfo{
			Name:       spec.Name,
			ScoreField: spec.ScoreField,
			Threshold:  spec.Threshold,
			PassLabel:  spec.PassLabel,
			FailLabel:  spec.FailLabel,
		}
		for _, d := range spec.Dimensions {
			info.Dimensions = append(info.Dimensions, d.Name)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

// handleScore always answers 200 for a known gate: malformed bodies come
// back as the gate's error result.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "gate")
	g, ok := s.gates[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown gate: " + name})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	res := g.Evaluate(body)
	if s.recorder != nil {
		s.recorder.Record("http", middleware.GetReqID(r.Context()), res)
	}
	writeJSON(w, http.StatusOK, res)
}

// #endregion handlers

// #region helpers
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// #endregion helpers
