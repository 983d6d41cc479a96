// Package screening evaluates applicant documents with an LLM and produces
// structured, normalized scoring results.
package screening

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/schemas"
)

//go:embed result.schema.json
var resultSchema string

// DocumentSet holds the extracted text available for one applicant. An empty
// string means that document was not supplied (or its extraction failed).
type DocumentSet struct {
	Resume      string
	CoverLetter string
	Transcript  string
}

// Empty reports whether no document text is available at all.
func (d DocumentSet) Empty() bool {
	return d.Resume == "" && d.CoverLetter == "" && d.Transcript == ""
}

// Result is a normalized screening evaluation. Every numeric score is within
// [0,100]; sub-scores are nil when that document type was not assessed.
type Result struct {
	OverallScore            float64
	ResumeScore             *float64
	CoverLetterScore        *float64
	TranscriptScore         *float64
	Strengths               []string
	Weaknesses              []string
	Reasoning               string
	RecommendedForInterview bool
	ConfidenceLevel         string
	ModelUsed               string
}

// Defaults applied during normalization.
const (
	defaultOverallScore = 50.0
	defaultReasoning    = "No reasoning provided"
	degradedScore       = 30.0
)

// rawResult mirrors the model's JSON response; pointers distinguish missing
// fields from zero values.
type rawResult struct {
	OverallScore            *float64 `json:"overall_score"`
	ResumeScore             *float64 `json:"resume_score"`
	CoverLetterScore        *float64 `json:"cover_letter_score"`
	TranscriptScore         *float64 `json:"transcript_score"`
	Strengths               []string `json:"strengths"`
	Weaknesses              []string `json:"weaknesses"`
	Reasoning               *string  `json:"reasoning"`
	RecommendedForInterview *bool    `json:"recommended_for_interview"`
	ConfidenceLevel         *string  `json:"confidence_level"`
}

// ParseResult validates and normalizes a model response. The response must be
// a single JSON object matching the embedded schema; fields the model omitted
// get deterministic defaults, and no remote numeric value is trusted to be in
// range.
func ParseResult(jsonText string) (*Result, error) {
	if err := schemas.ValidateJSONString(resultSchema, jsonText); err != nil {
		return nil, fmt.Errorf("response failed schema validation: %w", err)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	return normalize(&raw), nil
}

// normalize applies the default-and-clamp policy.
func normalize(raw *rawResult) *Result {
	result := &Result{
		OverallScore:     defaultOverallScore,
		ResumeScore:      clampScore(raw.ResumeScore),
		CoverLetterScore: clampScore(raw.CoverLetterScore),
		TranscriptScore:  clampScore(raw.TranscriptScore),
		Strengths:        raw.Strengths,
		Weaknesses:       raw.Weaknesses,
		Reasoning:        defaultReasoning,
		ConfidenceLevel:  db.ConfidenceMedium,
	}

	if raw.OverallScore != nil {
		result.OverallScore = clamp(*raw.OverallScore)
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Weaknesses == nil {
		result.Weaknesses = []string{}
	}
	if raw.Reasoning != nil && *raw.Reasoning != "" {
		result.Reasoning = *raw.Reasoning
	}
	if raw.RecommendedForInterview != nil {
		result.RecommendedForInterview = *raw.RecommendedForInterview
	}
	if raw.ConfidenceLevel != nil && *raw.ConfidenceLevel != "" {
		result.ConfidenceLevel = *raw.ConfidenceLevel
	}

	return result
}

// DegradedResult is the fixed low-confidence placeholder produced when
// scoring fails. Screening failure never blocks the pipeline: the applicant
// gets a conservative, visibly-flagged score instead of a missing record.
func DegradedResult(cause error) *Result {
	score := degradedScore
	return &Result{
		OverallScore:            degradedScore,
		ResumeScore:             &score,
		CoverLetterScore:        &score,
		TranscriptScore:         &score,
		Strengths:               []string{"Unable to analyze"},
		Weaknesses:              []string{"Screening failed"},
		Reasoning:               fmt.Sprintf("Automated screening encountered an error: %v", cause),
		RecommendedForInterview: false,
		ConfidenceLevel:         db.ConfidenceLow,
	}
}

func clampScore(v *float64) *float64 {
	if v == nil {
		return nil
	}
	clamped := clamp(*v)
	return &clamped
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
