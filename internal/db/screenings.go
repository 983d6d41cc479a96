package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertScreeningResult writes the screening result for an applicant. A
// re-screen replaces the prior row; the unique applicant_id constraint keeps
// the one-result-per-applicant invariant regardless of retries.
func (db *DB) UpsertScreeningResult(ctx context.Context, r *ScreeningResult) error {
	strengths, err := json.Marshal(r.Strengths)
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %w", err)
	}
	weaknesses, err := json.Marshal(r.Weaknesses)
	if err != nil {
		return fmt.Errorf("failed to marshal weaknesses: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO screening_results
		   (applicant_id, overall_score, resume_score, cover_letter_score, transcript_score,
		    strengths, weaknesses, reasoning, recommended_for_interview, confidence_level, model_used)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (applicant_id) DO UPDATE SET
		   overall_score = $2, resume_score = $3, cover_letter_score = $4, transcript_score = $5,
		   strengths = $6, weaknesses = $7, reasoning = $8, recommended_for_interview = $9,
		   confidence_level = $10, model_used = $11,
		   rank = NULL, percentile = NULL, screened_at = NOW()`,
		r.ApplicantID, r.OverallScore, r.ResumeScore, r.CoverLetterScore, r.TranscriptScore,
		strengths, weaknesses, r.Reasoning, r.RecommendedForInterview, r.ConfidenceLevel, r.ModelUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert screening result: %w", err)
	}
	return nil
}

// GetScreeningByApplicant returns the screening result for an applicant, or
// nil if the applicant has not been screened.
func (db *DB) GetScreeningByApplicant(ctx context.Context, applicantID uuid.UUID) (*ScreeningResult, error) {
	var (
		r          ScreeningResult
		strengths  []byte
		weaknesses []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, applicant_id, overall_score, resume_score, cover_letter_score, transcript_score,
		        strengths, weaknesses, reasoning, recommended_for_interview, confidence_level,
		        rank, percentile, screened_at, model_used
		 FROM screening_results WHERE applicant_id = $1`,
		applicantID,
	).Scan(&r.ID, &r.ApplicantID, &r.OverallScore, &r.ResumeScore, &r.CoverLetterScore, &r.TranscriptScore,
		&strengths, &weaknesses, &r.Reasoning, &r.RecommendedForInterview, &r.ConfidenceLevel,
		&r.Rank, &r.Percentile, &r.ScreenedAt, &r.ModelUsed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get screening result: %w", err)
	}

	if err := json.Unmarshal(strengths, &r.Strengths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal(weaknesses, &r.Weaknesses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weaknesses: %w", err)
	}
	return &r, nil
}

// ListScoredForRanking returns every screened applicant ordered by overall
// score descending with screened_at ascending as the tie-break, so rank
// assignment is reproducible.
func (db *DB) ListScoredForRanking(ctx context.Context) ([]ScoredApplicant, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT applicant_id, overall_score, screened_at
		 FROM screening_results
		 ORDER BY overall_score DESC, screened_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored applicants: %w", err)
	}
	defer rows.Close()

	var scored []ScoredApplicant
	for rows.Next() {
		var s ScoredApplicant
		if err := rows.Scan(&s.ApplicantID, &s.OverallScore, &s.ScreenedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scored applicant: %w", err)
		}
		scored = append(scored, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scored applicants: %w", err)
	}
	return scored, nil
}

// ApplyPlacements writes rank and percentile for every screened applicant in
// a single transaction. Readers see either the old ranking or the new one,
// never a mix; any failure rolls back to the prior state.
func (db *DB) ApplyPlacements(ctx context.Context, placements []RankPlacement) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin ranking transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, p := range placements {
		if _, err := tx.Exec(ctx,
			`UPDATE screening_results SET rank = $1, percentile = $2 WHERE applicant_id = $3`,
			p.Rank, p.Percentile, p.ApplicantID,
		); err != nil {
			return fmt.Errorf("failed to write placement for %s: %w", p.ApplicantID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ranking transaction: %w", err)
	}
	return nil
}

// TopPerformers returns up to limit applicants with overall_score >= minScore,
// highest score first.
func (db *DB) TopPerformers(ctx context.Context, minScore float64, limit int) ([]ApplicantDetail, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.id FROM applicants a
		 JOIN screening_results s ON s.applicant_id = a.id
		 WHERE s.overall_score >= $1
		 ORDER BY s.overall_score DESC, s.screened_at ASC
		 LIMIT $2`,
		minScore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top performers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan top performer: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top performers: %w", err)
	}

	details := make([]ApplicantDetail, 0, len(ids))
	for _, id := range ids {
		detail, err := db.GetApplicantDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		if detail != nil {
			details = append(details, *detail)
		}
	}
	return details, nil
}

// CountScreened returns the number of screening results.
func (db *DB) CountScreened(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM screening_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count screening results: %w", err)
	}
	return count, nil
}

// CountRecommended returns the number of applicants recommended for interview.
func (db *DB) CountRecommended(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM screening_results WHERE recommended_for_interview = TRUE`,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recommended applicants: %w", err)
	}
	return count, nil
}

// AverageScore returns the mean overall score across all screenings, or 0
// when nothing has been screened.
func (db *DB) AverageScore(ctx context.Context) (float64, error) {
	var avg *float64
	if err := db.pool.QueryRow(ctx,
		`SELECT AVG(overall_score) FROM screening_results`,
	).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to compute average score: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// ListOverallScores returns every overall score; used for distribution bins.
func (db *DB) ListOverallScores(ctx context.Context) ([]float64, error) {
	rows, err := db.pool.Query(ctx, `SELECT overall_score FROM screening_results`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}
	return scores, nil
}
