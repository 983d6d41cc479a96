package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateHistoricalHire inserts a historical hire record and returns it.
func (db *DB) CreateHistoricalHire(ctx context.Context, h *HistoricalHire) (*HistoricalHire, error) {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO historical_hires
		   (name, hired_date, position, resume_text, cover_letter_text, transcript_text,
		    outcome, outcome_notes, tenure_months, performance_rating)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		h.Name, h.HiredDate, h.Position, h.ResumeText, h.CoverLetterText, h.TranscriptText,
		h.Outcome, h.OutcomeNotes, h.TenureMonths, h.PerformanceRating,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create historical hire: %w", err)
	}
	return h, nil
}

// ListHistoricalHires returns hires, optionally filtered by outcome.
func (db *DB) ListHistoricalHires(ctx context.Context, outcome HireOutcome, skip, limit int) ([]HistoricalHire, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, name, hired_date, position, resume_text, cover_letter_text, transcript_text,
	                 outcome, outcome_notes, tenure_months, performance_rating, created_at
	          FROM historical_hires`
	args := []any{}
	if outcome != "" {
		args = append(args, outcome)
		query += fmt.Sprintf(" WHERE outcome = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list historical hires: %w", err)
	}
	defer rows.Close()

	var hires []HistoricalHire
	for rows.Next() {
		var h HistoricalHire
		if err := rows.Scan(&h.ID, &h.Name, &h.HiredDate, &h.Position, &h.ResumeText,
			&h.CoverLetterText, &h.TranscriptText, &h.Outcome, &h.OutcomeNotes,
			&h.TenureMonths, &h.PerformanceRating, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan historical hire: %w", err)
		}
		hires = append(hires, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate historical hires: %w", err)
	}
	return hires, nil
}

// HistoricalStats aggregates hire outcomes.
type HistoricalStats struct {
	TotalHires        int            `json:"total_hires"`
	OutcomeBreakdown  map[string]int `json:"outcome_breakdown"`
	AvgTenureMonths   *float64       `json:"average_tenure_months"`
	AvgPerformance    *float64       `json:"average_performance_rating"`
}

// GetHistoricalStats returns aggregate statistics over historical hires.
func (db *DB) GetHistoricalStats(ctx context.Context) (*HistoricalStats, error) {
	stats := &HistoricalStats{OutcomeBreakdown: make(map[string]int)}

	rows, err := db.pool.Query(ctx,
		`SELECT outcome, COUNT(*) FROM historical_hires GROUP BY outcome`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		stats.OutcomeBreakdown[outcome] = count
		stats.TotalHires += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcome counts: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`SELECT AVG(tenure_months), AVG(performance_rating) FROM historical_hires`,
	).Scan(&stats.AvgTenureMonths, &stats.AvgPerformance)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hire averages: %w", err)
	}

	return stats, nil
}

// DeleteHistoricalHire removes a hire record. Returns false if not found.
func (db *DB) DeleteHistoricalHire(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM historical_hires WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete historical hire: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
