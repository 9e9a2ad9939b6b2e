package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roulette-lab/internal/analysis"
	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
)

type windowQuery struct {
	Strategy string `query:"strategy" validate:"required,max=64"`
	Date     string `query:"date" default:"live" validate:"required"`
	Attempts int    `query:"attempts" validate:"min=1,max=6"`
}

type statsQuery struct {
	Strategy string `query:"strategy" validate:"required,max=64"`
	Date     string `query:"date" default:"live" validate:"required"`
	Attempts int    `query:"attempts" validate:"min=1,max=6"`
	Policy   string `query:"policy" default:"consuming" validate:"oneof=consuming independent"`
	Persist  bool   `query:"persist"`
}

type spinInput struct {
	SpinID      string `json:"spin_id" validate:"required,max=128"`
	Number      *int   `json:"number" validate:"required,min=0,max=37"`
	TimestampMs int64  `json:"timestamp_ms" validate:"gt=0"`
}

type ingestRequest struct {
	Spins []spinInput `json:"spins" validate:"required,min=1,max=10000,dive"`
}

type statsResponse struct {
	RunID       string               `json:"run_id"`
	RouletteID  string               `json:"roulette_id"`
	Date        string               `json:"date"`
	Policy      string               `json:"policy"`
	Fingerprint string               `json:"fingerprint"`
	ComputedAt  int64                `json:"computed_at"`
	Stats       domain.StrategyStats `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"strategies": s.svc.Strategies()})
}

func (s *Server) handleRoulettes(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Roulettes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"roulettes": ids})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rouletteID := chi.URLParam(r, "rouletteID")
	spins := make([]*domain.Spin, len(req.Spins))
	for i, in := range req.Spins {
		spins[i] = &domain.Spin{
			RouletteID:  rouletteID,
			SpinID:      in.SpinID,
			Number:      *in.Number,
			TimestampMs: in.TimestampMs,
		}
	}

	if err := s.svc.Ingest(r.Context(), rouletteID, spins); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"stored": len(spins)})
}

func (s *Server) readWindow(r *http.Request, q *windowQuery) (analysis.Request, error) {
	q.Attempts = s.defaultAttempts
	if err := readQuery(r, q); err != nil {
		return analysis.Request{}, err
	}
	return analysis.Request{
		RouletteID: chi.URLParam(r, "rouletteID"),
		StrategyID: q.Strategy,
		Date:       q.Date,
		Attempts:   q.Attempts,
	}, nil
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var q windowQuery
	req, err := s.readWindow(r, &q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var q windowQuery
	req, err := s.readWindow(r, &q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Snapshot(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var q statsQuery
	q.Attempts = s.defaultAttempts
	if err := readQuery(r, &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	policy, err := classifier.ParsePolicy(q.Policy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := analysis.Request{
		RouletteID: chi.URLParam(r, "rouletteID"),
		StrategyID: q.Strategy,
		Date:       q.Date,
		Attempts:   q.Attempts,
	}
	snap, err := s.svc.Stats(r.Context(), req, policy, q.Persist)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		RunID:       snap.RunID,
		RouletteID:  snap.RouletteID,
		Date:        snap.Day,
		Policy:      snap.Policy,
		Fingerprint: snap.Fingerprint,
		ComputedAt:  snap.ComputedAt,
		Stats:       snap.Stats,
	})
}
