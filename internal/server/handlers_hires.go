package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/martina/applicant-screener/internal/db"
)

// CreateHireRequest is the body for POST /historical-hires.
type CreateHireRequest struct {
	Name              string   `json:"name"`
	HiredDate         string   `json:"hired_date,omitempty"` // YYYY-MM-DD
	Position          string   `json:"position,omitempty"`
	ResumeText        string   `json:"resume_text,omitempty"`
	CoverLetterText   string   `json:"cover_letter_text,omitempty"`
	TranscriptText    string   `json:"transcript_text,omitempty"`
	Outcome           string   `json:"outcome"`
	OutcomeNotes      string   `json:"outcome_notes,omitempty"`
	TenureMonths      *int     `json:"tenure_months,omitempty"`
	PerformanceRating *float64 `json:"performance_rating,omitempty"`
}

// handleCreateHistoricalHire records the outcome of a past hire.
func (s *Server) handleCreateHistoricalHire(w http.ResponseWriter, r *http.Request) {
	var req CreateHireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handlerError(w, &ErrBadRequest{Message: "invalid request body: " + err.Error()})
		return
	}

	outcome := db.HireOutcome(req.Outcome)
	switch outcome {
	case db.OutcomePositive, db.OutcomeNegative, db.OutcomeNeutral:
	default:
		s.handlerError(w, &ErrBadRequest{Message: "outcome must be positive, negative, or neutral"})
		return
	}

	hire := &db.HistoricalHire{
		Name:              req.Name,
		Position:          req.Position,
		ResumeText:        req.ResumeText,
		CoverLetterText:   req.CoverLetterText,
		TranscriptText:    req.TranscriptText,
		Outcome:           outcome,
		OutcomeNotes:      req.OutcomeNotes,
		TenureMonths:      req.TenureMonths,
		PerformanceRating: req.PerformanceRating,
	}
	if req.HiredDate != "" {
		hired, err := time.Parse("2006-01-02", req.HiredDate)
		if err != nil {
			s.handlerError(w, &ErrBadRequest{Message: "hired_date must be YYYY-MM-DD"})
			return
		}
		hire.HiredDate = &hired
	}

	created, err := s.store.CreateHistoricalHire(r.Context(), hire)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleListHistoricalHires lists hires, optionally filtered by outcome.
func (s *Server) handleListHistoricalHires(w http.ResponseWriter, r *http.Request) {
	outcome := db.HireOutcome(r.URL.Query().Get("outcome"))
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	hires, err := s.store.ListHistoricalHires(r.Context(), outcome, skip, limit)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"hires": hires,
		"count": len(hires),
	})
}

// handleHistoricalStats reports aggregate hire outcome statistics.
func (s *Server) handleHistoricalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetHistoricalStats(r.Context())
	if err != nil {
		s.handlerError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleDeleteHistoricalHire removes a historical hire record.
func (s *Server) handleDeleteHistoricalHire(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handlerError(w, err)
		return
	}

	deleted, err := s.store.DeleteHistoricalHire(r.Context(), id)
	if err != nil {
		s.handlerError(w, err)
		return
	}
	if !deleted {
		s.handlerError(w, &ErrNotFound{Resource: "historical hire", ID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
