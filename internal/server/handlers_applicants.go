package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/intake"
	"github.com/martina/applicant-screener/internal/ranking"
)

// multipart form field names mapping to document types.
var uploadFields = []struct {
	field   string
	docType db.DocumentType
}{
	{"resume", db.DocResume},
	{"cover_letter", db.DocCoverLetter},
	{"transcript", db.DocTranscript},
	{"combined", db.DocCombined},
}

// UploadResponse acknowledges an accepted application.
type UploadResponse struct {
	ApplicantID string `json:"applicant_id"`
	Status      string `json:"status"`
	Documents   int    `json:"documents_received"`
}

// handleUploadApplication accepts a multipart application: metadata fields
// plus one file per document type. Screening runs in the background; the
// response is a 202 with the new applicant id.
func (s *Server) handleUploadApplication(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes + 1<<20); err != nil {
		s.handlerError(w, &ErrBadRequest{Message: "invalid multipart form: " + err.Error()})
		return
	}

	meta := intake.Metadata{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Source:   r.FormValue("source"),
		Position: r.FormValue("position"),
	}

	var uploads []intake.Upload
	for _, uf := range uploadFields {
		file, header, err := r.FormFile(uf.field)
		if err == http.ErrMissingFile {
			continue
		}
		if err != nil {
			s.handlerError(w, &ErrBadRequest{Message: fmt.Sprintf("failed to read %s upload: %v", uf.field, err)})
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.handlerError(w, &ErrBadRequest{Message: fmt.Sprintf("failed to read %s upload: %v", uf.field, err)})
			return
		}
		uploads = append(uploads, intake.Upload{
			Type:     uf.docType,
			Filename: header.Filename,
			Content:  content,
		})
	}

	applicant, err := s.intake.Process(r.Context(), meta, uploads)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusAccepted, UploadResponse{
		ApplicantID: applicant.ID.String(),
		Status:      "screening_queued",
		Documents:   len(uploads),
	})
}

// handleListApplicants lists applicants, best score first. Supports
// min_score, recommended_only, skip, and limit query parameters.
func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	filter := db.ApplicantFilter{}

	if v := r.URL.Query().Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.handlerError(w, &ErrBadRequest{Message: "invalid min_score"})
			return
		}
		filter.MinScore = &score
	}
	if v := r.URL.Query().Get("recommended_only"); v != "" {
		filter.RecommendedOnly = v == "true"
	}
	filter.Skip = queryInt(r, "skip", 0)
	filter.Limit = queryInt(r, "limit", 100)

	applicants, err := s.store.ListApplicants(r.Context(), filter)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applicants": applicants,
		"count":      len(applicants),
	})
}

// ApplicantResponse is an applicant detail plus a composite score derived
// from whichever sub-scores are present.
type ApplicantResponse struct {
	*db.ApplicantDetail
	CompositeScore *float64 `json:"composite_score,omitempty"`
}

// handleGetApplicant returns one applicant with documents and screening.
func (s *Server) handleGetApplicant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handlerError(w, err)
		return
	}

	detail, err := s.store.GetApplicantDetail(r.Context(), id)
	if err != nil {
		s.handlerError(w, err)
		return
	}
	if detail == nil {
		s.handlerError(w, &ErrNotFound{Resource: "applicant", ID: id})
		return
	}

	resp := ApplicantResponse{ApplicantDetail: detail}
	if sr := detail.ScreeningResult; sr != nil {
		composite := ranking.CompositeScore(sr.ResumeScore, sr.CoverLetterScore, sr.TranscriptScore, ranking.DefaultWeights())
		resp.CompositeScore = &composite
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDeleteApplicant removes an applicant, their database rows, and their
// stored files.
func (s *Server) handleDeleteApplicant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handlerError(w, err)
		return
	}

	deleted, err := s.store.DeleteApplicant(r.Context(), id)
	if err != nil {
		s.handlerError(w, err)
		return
	}
	if !deleted {
		s.handlerError(w, &ErrNotFound{Resource: "applicant", ID: id})
		return
	}

	if err := s.files.DeleteApplicantFiles(id); err != nil {
		s.log.Warn("failed to delete applicant files",
			zap.String("applicant_id", id.String()),
			zap.Error(err))
	}

	// Removing a screened applicant shifts everyone else's rank and percentile.
	if err := s.rankings.RecomputeRankings(r.Context()); err != nil {
		s.log.Warn("failed to recompute rankings after delete",
			zap.String("applicant_id", id.String()),
			zap.Error(err))
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleRescreen queues a fresh evaluation for an existing applicant.
func (s *Server) handleRescreen(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handlerError(w, err)
		return
	}

	detail, err := s.store.GetApplicantDetail(r.Context(), id)
	if err != nil {
		s.handlerError(w, err)
		return
	}
	if detail == nil {
		s.handlerError(w, &ErrNotFound{Resource: "applicant", ID: id})
		return
	}

	s.queue.Enqueue(id)
	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"applicant_id": id.String(),
		"status":       "screening_queued",
	})
}

// handleTopCandidates returns the best-scoring slice of the screened
// population.
func (s *Server) handleTopCandidates(w http.ResponseWriter, r *http.Request) {
	percentage := queryFloat(r, "percentage", s.cfg.TopPercentage)
	minScore := queryFloat(r, "min_score", s.cfg.MinScoreThreshold)

	performers, total, err := s.rankings.TopPerformers(r.Context(), percentage, minScore)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates":     performers,
		"count":          len(performers),
		"total_screened": total,
		"percentage":     percentage,
		"min_score":      minScore,
	})
}

// AnalyticsSummary aggregates population-level screening statistics.
type AnalyticsSummary struct {
	TotalApplicants   int            `json:"total_applicants"`
	TotalScreened     int            `json:"total_screened"`
	TotalRecommended  int            `json:"total_recommended"`
	AverageScore      float64        `json:"average_score"`
	Top15PercentCount int            `json:"top_15_percent_count"`
	ScoreDistribution map[string]int `json:"score_distribution"`
}

// handleAnalyticsSummary reports counts, the average score, and the score
// distribution.
func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary := AnalyticsSummary{}
	var err error

	if summary.TotalApplicants, err = s.store.CountApplicants(ctx); err != nil {
		s.handlerError(w, err)
		return
	}
	if summary.TotalScreened, err = s.store.CountScreened(ctx); err != nil {
		s.handlerError(w, err)
		return
	}
	if summary.TotalRecommended, err = s.store.CountRecommended(ctx); err != nil {
		s.handlerError(w, err)
		return
	}
	if summary.AverageScore, err = s.store.AverageScore(ctx); err != nil {
		s.handlerError(w, err)
		return
	}
	if summary.ScoreDistribution, err = s.rankings.ScoreDistribution(ctx); err != nil {
		s.handlerError(w, err)
		return
	}
	summary.Top15PercentCount = ranking.TopCount(summary.TotalScreened, 15)

	s.jsonResponse(w, http.StatusOK, summary)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrBadRequest{Message: fmt.Sprintf("invalid %s: must be a UUID", name)}
	}
	return id, nil
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func queryFloat(r *http.Request, name string, defaultValue float64) float64 {
	if v := r.URL.Query().Get(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
