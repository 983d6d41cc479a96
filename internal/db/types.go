package db

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies what kind of document an applicant uploaded.
type DocumentType string

// Document type constants
const (
	DocResume      DocumentType = "resume"
	DocCoverLetter DocumentType = "cover_letter"
	DocTranscript  DocumentType = "transcript"
	DocCombined    DocumentType = "combined" // all documents in one PDF
)

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocResume, DocCoverLetter, DocTranscript, DocCombined:
		return true
	}
	return false
}

// Confidence levels reported by the screening model.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// HireOutcome classifies a historical hire.
type HireOutcome string

// Hire outcome constants
const (
	OutcomePositive HireOutcome = "positive"
	OutcomeNegative HireOutcome = "negative"
	OutcomeNeutral  HireOutcome = "neutral"
)

// Applicant is a person who submitted documents for evaluation.
// Contact fields are optional and empty when not supplied.
type Applicant struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Source          string    `json:"source"`
	PositionApplied string    `json:"position_applied,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Document is a stored upload belonging to one applicant. Immutable once
// created except for extracted-text backfill.
type Document struct {
	ID               uuid.UUID    `json:"id"`
	ApplicantID      uuid.UUID    `json:"applicant_id"`
	Type             DocumentType `json:"document_type"`
	StoragePath      string       `json:"storage_path"`
	OriginalFilename string       `json:"original_filename"`
	ExtractedText    string       `json:"extracted_text,omitempty"`
	FileSizeBytes    int64        `json:"file_size_bytes"`
	PageCount        int          `json:"page_count,omitempty"`
	ContentSHA256    string       `json:"content_sha256"`
	UploadedAt       time.Time    `json:"uploaded_at"`
}

// ScreeningResult holds the structured evaluation for one applicant.
// Rank and Percentile are nil until the ranking pass runs.
type ScreeningResult struct {
	ID                      uuid.UUID `json:"id"`
	ApplicantID             uuid.UUID `json:"applicant_id"`
	OverallScore            float64   `json:"overall_score"`
	ResumeScore             *float64  `json:"resume_score"`
	CoverLetterScore        *float64  `json:"cover_letter_score"`
	TranscriptScore         *float64  `json:"transcript_score"`
	Strengths               []string  `json:"strengths"`
	Weaknesses              []string  `json:"weaknesses"`
	Reasoning               string    `json:"reasoning"`
	RecommendedForInterview bool      `json:"recommended_for_interview"`
	ConfidenceLevel         string    `json:"confidence_level"`
	Rank                    *int      `json:"rank"`
	Percentile              *float64  `json:"percentile"`
	ScreenedAt              time.Time `json:"screened_at"`
	ModelUsed               string    `json:"model_used"`
}

// ApplicantDetail combines an applicant with their documents and screening.
type ApplicantDetail struct {
	Applicant
	Documents       []Document       `json:"documents"`
	ScreeningResult *ScreeningResult `json:"screening_result,omitempty"`
}

// ScoredApplicant is the minimal row the ranking recompute reads.
type ScoredApplicant struct {
	ApplicantID  uuid.UUID
	OverallScore float64
	ScreenedAt   time.Time
}

// RankPlacement is one row of a ranking recompute write-back.
type RankPlacement struct {
	ApplicantID uuid.UUID
	Rank        int
	Percentile  float64
}

// HistoricalHire records the outcome of a past hire, kept for future
// screening calibration.
type HistoricalHire struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name,omitempty"`
	HiredDate         *time.Time  `json:"hired_date,omitempty"`
	Position          string      `json:"position,omitempty"`
	ResumeText        string      `json:"resume_text,omitempty"`
	CoverLetterText   string      `json:"cover_letter_text,omitempty"`
	TranscriptText    string      `json:"transcript_text,omitempty"`
	Outcome           HireOutcome `json:"outcome"`
	OutcomeNotes      string      `json:"outcome_notes,omitempty"`
	TenureMonths      *int        `json:"tenure_months,omitempty"`
	PerformanceRating *float64    `json:"performance_rating,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// JobPosting describes an open position; active postings supply job
// requirements to the screening prompt.
type JobPosting struct {
	ID                      uuid.UUID  `json:"id"`
	Title                   string     `json:"title"`
	Description             string     `json:"description,omitempty"`
	Location                string     `json:"location,omitempty"`
	Department              string     `json:"department,omitempty"`
	RequiredSkills          []string   `json:"required_skills"`
	PreferredQualifications string     `json:"preferred_qualifications,omitempty"`
	MinGPA                  *float64   `json:"min_gpa,omitempty"`
	IsActive                bool       `json:"is_active"`
	PostedAt                time.Time  `json:"posted_at"`
	ClosesAt                *time.Time `json:"closes_at,omitempty"`
}
