package screening

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	GetApplicant(ctx context.Context, id uuid.UUID) (*db.Applicant, error)
	GetDocumentsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]db.Document, error)
	UpdateDocumentText(ctx context.Context, id uuid.UUID, text string) error
	UpsertScreeningResult(ctx context.Context, r *db.ScreeningResult) error
	GetActivePostingByTitle(ctx context.Context, title string) (*db.JobPosting, error)
}

// Ranker recomputes global rank and percentile after a score changes.
type Ranker interface {
	RecomputeRankings(ctx context.Context) error
}

// TextExtractor retries extraction on documents whose upload-time extraction
// yielded nothing.
type TextExtractor interface {
	Extract(path string) string
}

// Orchestrator runs the full screening flow for one applicant: gather
// extracted text, score it, persist the result, and refresh rankings.
type Orchestrator struct {
	store     Store
	scorer    Scorer
	ranker    Ranker
	extractor TextExtractor
	log       *zap.Logger
}

// NewOrchestrator wires a screening flow. ranker and extractor may be nil
// when ranking is handled elsewhere or extraction retries are not wanted.
func NewOrchestrator(store Store, scorer Scorer, ranker Ranker, extractor TextExtractor, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{store: store, scorer: scorer, ranker: ranker, extractor: extractor, log: log}
}

// Screen evaluates one applicant and persists the outcome. A scoring failure
// is absorbed into a degraded result; only persistence and lookup failures
// propagate. Safe to call again for re-screening: the result row is upserted
// and rank/percentile reset until the next recompute.
func (o *Orchestrator) Screen(ctx context.Context, applicantID uuid.UUID) error {
	applicant, err := o.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return fmt.Errorf("failed to load applicant %s: %w", applicantID, err)
	}
	if applicant == nil {
		return fmt.Errorf("applicant %s not found", applicantID)
	}

	docs, err := o.collectDocuments(ctx, applicantID)
	if err != nil {
		return err
	}

	jobRequirements := o.lookupJobRequirements(ctx, applicant.PositionApplied)

	var result *Result
	if docs.Empty() {
		o.log.Warn("no extracted text available, recording degraded result",
			zap.String("applicant_id", applicantID.String()))
		result = DegradedResult(fmt.Errorf("no readable document text"))
	} else {
		result = o.scorer.Score(ctx, applicant.Name, docs, jobRequirements)
	}

	row := &db.ScreeningResult{
		ApplicantID:             applicantID,
		OverallScore:            result.OverallScore,
		ResumeScore:             result.ResumeScore,
		CoverLetterScore:        result.CoverLetterScore,
		TranscriptScore:         result.TranscriptScore,
		Strengths:               result.Strengths,
		Weaknesses:              result.Weaknesses,
		Reasoning:               result.Reasoning,
		RecommendedForInterview: result.RecommendedForInterview,
		ConfidenceLevel:         result.ConfidenceLevel,
		ModelUsed:               result.ModelUsed,
	}
	if err := o.store.UpsertScreeningResult(ctx, row); err != nil {
		return fmt.Errorf("failed to persist screening result: %w", err)
	}

	o.log.Info("applicant screened",
		zap.String("applicant_id", applicantID.String()),
		zap.Float64("overall_score", result.OverallScore),
		zap.Bool("recommended", result.RecommendedForInterview),
		zap.String("confidence", result.ConfidenceLevel))

	// Ranking is best-effort here; the score is already durable and the next
	// recompute will pick it up.
	if o.ranker != nil {
		if err := o.ranker.RecomputeRankings(ctx); err != nil {
			o.log.Error("ranking recompute failed after screening",
				zap.String("applicant_id", applicantID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// collectDocuments maps stored extracted text into the scorer's document
// slots. A combined upload stands in for the resume when no dedicated resume
// exists.
func (o *Orchestrator) collectDocuments(ctx context.Context, applicantID uuid.UUID) (DocumentSet, error) {
	rows, err := o.store.GetDocumentsByApplicant(ctx, applicantID)
	if err != nil {
		return DocumentSet{}, fmt.Errorf("failed to load documents for %s: %w", applicantID, err)
	}

	var docs DocumentSet
	var combined string
	for _, row := range rows {
		if row.ExtractedText == "" {
			row.ExtractedText = o.retryExtraction(ctx, row)
		}
		switch row.Type {
		case db.DocResume:
			docs.Resume = row.ExtractedText
		case db.DocCoverLetter:
			docs.CoverLetter = row.ExtractedText
		case db.DocTranscript:
			docs.Transcript = row.ExtractedText
		case db.DocCombined:
			combined = row.ExtractedText
		}
	}
	if docs.Resume == "" && combined != "" {
		docs.Resume = combined
	}
	return docs, nil
}

// retryExtraction takes another pass at a document that produced no text at
// upload time, persisting any text recovered. Useful on re-screens after an
// extraction hiccup. Returns "" when nothing can be recovered.
func (o *Orchestrator) retryExtraction(ctx context.Context, row db.Document) string {
	if o.extractor == nil {
		return ""
	}
	text := o.extractor.Extract(row.StoragePath)
	if text == "" {
		return ""
	}

	o.log.Info("recovered text on extraction retry",
		zap.String("document_id", row.ID.String()),
		zap.String("type", string(row.Type)))
	if err := o.store.UpdateDocumentText(ctx, row.ID, text); err != nil {
		o.log.Warn("failed to persist recovered text",
			zap.String("document_id", row.ID.String()),
			zap.Error(err))
	}
	return text
}

// lookupJobRequirements finds an active posting matching the applicant's
// position. Absence is normal and yields generic screening.
func (o *Orchestrator) lookupJobRequirements(ctx context.Context, position string) string {
	if position == "" {
		return ""
	}
	posting, err := o.store.GetActivePostingByTitle(ctx, position)
	if err != nil {
		o.log.Warn("job posting lookup failed", zap.String("position", position), zap.Error(err))
		return ""
	}
	return FormatJobRequirements(posting)
}
