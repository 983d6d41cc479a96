package screening

import (
	"fmt"
	"strings"

	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/prompts"
)

// Per-document character limits for the evaluation prompt. Long documents
// are cut so a single oversized upload cannot blow the model's context.
const (
	maxResumeChars      = 4000
	maxCoverLetterChars = 2000
	maxTranscriptChars  = 2000
)

const notProvided = "Not provided"

// SystemPrompt returns the screening rubric given to the model.
func SystemPrompt() string {
	return prompts.MustGet("screening.json", "screening_system")
}

// BuildPrompt assembles the user-turn prompt for one applicant. Absent
// documents are rendered explicitly so the model scores them as null rather
// than hallucinating content.
func BuildPrompt(applicantName string, docs DocumentSet, jobRequirements string) string {
	var b strings.Builder

	b.WriteString(prompts.MustGet("screening.json", "screening_intro"))
	if applicantName != "" {
		fmt.Fprintf(&b, "\nApplicant: %s\n", applicantName)
	}
	if jobRequirements != "" {
		b.WriteString("\n=== JOB REQUIREMENTS ===\n")
		b.WriteString(jobRequirements)
		b.WriteString("\n")
	}

	writeSection(&b, "RESUME", docs.Resume, maxResumeChars)
	writeSection(&b, "COVER LETTER", docs.CoverLetter, maxCoverLetterChars)
	writeSection(&b, "ACADEMIC TRANSCRIPT", docs.Transcript, maxTranscriptChars)

	b.WriteString("\n")
	b.WriteString(prompts.MustGet("screening.json", "screening_footer"))

	return b.String()
}

// FormatJobRequirements renders an active posting as prompt text.
func FormatJobRequirements(posting *db.JobPosting) string {
	if posting == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: %s\n", posting.Title)
	if posting.Department != "" {
		fmt.Fprintf(&b, "Department: %s\n", posting.Department)
	}
	if posting.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", posting.Description)
	}
	if len(posting.RequiredSkills) > 0 {
		fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(posting.RequiredSkills, ", "))
	}
	if posting.PreferredQualifications != "" {
		fmt.Fprintf(&b, "Preferred qualifications: %s\n", posting.PreferredQualifications)
	}
	if posting.MinGPA != nil {
		fmt.Fprintf(&b, "Minimum GPA: %.2f\n", *posting.MinGPA)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, heading, text string, limit int) {
	fmt.Fprintf(b, "\n=== %s ===\n", heading)
	if strings.TrimSpace(text) == "" {
		b.WriteString(notProvided)
		b.WriteString("\n")
		return
	}
	b.WriteString(truncateRunes(text, limit))
	b.WriteString("\n")
}

// truncateRunes cuts at a rune boundary so multi-byte text is never split
// mid-character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n[... truncated ...]"
}
