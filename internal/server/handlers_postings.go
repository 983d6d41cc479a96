package server

import (
	"encoding/json"
	"net/http"

	"github.com/martina/applicant-screener/internal/db"
)

// CreatePostingRequest is the body for POST /job-postings.
type CreatePostingRequest struct {
	Title                   string   `json:"title"`
	Description             string   `json:"description,omitempty"`
	Location                string   `json:"location,omitempty"`
	Department              string   `json:"department,omitempty"`
	RequiredSkills          []string `json:"required_skills,omitempty"`
	PreferredQualifications string   `json:"preferred_qualifications,omitempty"`
	MinGPA                  *float64 `json:"min_gpa,omitempty"`
	IsActive                *bool    `json:"is_active,omitempty"`
}

// handleCreateJobPosting registers a posting. Active postings matching an
// applicant's position feed requirements into the screening prompt.
func (s *Server) handleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	var req CreatePostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handlerError(w, &ErrBadRequest{Message: "invalid request body: " + err.Error()})
		return
	}
	if req.Title == "" {
		s.handlerError(w, &ErrBadRequest{Message: "title is required"})
		return
	}

	posting := &db.JobPosting{
		Title:                   req.Title,
		Description:             req.Description,
		Location:                req.Location,
		Department:              req.Department,
		RequiredSkills:          req.RequiredSkills,
		PreferredQualifications: req.PreferredQualifications,
		MinGPA:                  req.MinGPA,
		IsActive:                true,
	}
	if req.IsActive != nil {
		posting.IsActive = *req.IsActive
	}

	created, err := s.store.CreateJobPosting(r.Context(), posting)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleListJobPostings lists postings; ?active_only=true filters to open
// ones.
func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	postings, err := s.store.ListJobPostings(r.Context(), activeOnly)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"postings": postings,
		"count":    len(postings),
	})
}

// handleDeleteJobPosting removes a posting.
func (s *Server) handleDeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handlerError(w, err)
		return
	}

	deleted, err := s.store.DeleteJobPosting(r.Context(), id)
	if err != nil {
		s.handlerError(w, err)
		return
	}
	if !deleted {
		s.handlerError(w, &ErrNotFound{Resource: "job posting", ID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
