package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateApplicant inserts a new applicant record and returns it.
func (db *DB) CreateApplicant(ctx context.Context, name, email, phone, source, position string) (*Applicant, error) {
	if source == "" {
		source = "handshake"
	}

	var a Applicant
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applicants (name, email, phone, source, position_applied)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, email, phone, source, position_applied, created_at, updated_at`,
		name, email, phone, source, position,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Source, &a.PositionApplied, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}
	return &a, nil
}

// GetApplicant retrieves an applicant by ID, or nil if not found.
func (db *DB) GetApplicant(ctx context.Context, id uuid.UUID) (*Applicant, error) {
	var a Applicant
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, source, position_applied, created_at, updated_at
		 FROM applicants WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Source, &a.PositionApplied, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	return &a, nil
}

// GetApplicantDetail retrieves an applicant with documents and screening
// result, or nil if the applicant does not exist.
func (db *DB) GetApplicantDetail(ctx context.Context, id uuid.UUID) (*ApplicantDetail, error) {
	applicant, err := db.GetApplicant(ctx, id)
	if err != nil {
		return nil, err
	}
	if applicant == nil {
		return nil, nil
	}

	docs, err := db.GetDocumentsByApplicant(ctx, id)
	if err != nil {
		return nil, err
	}

	screening, err := db.GetScreeningByApplicant(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ApplicantDetail{
		Applicant:       *applicant,
		Documents:       docs,
		ScreeningResult: screening,
	}, nil
}

// ApplicantFilter narrows ListApplicants results.
type ApplicantFilter struct {
	MinScore        *float64
	RecommendedOnly bool
	Skip            int
	Limit           int
}

// ListApplicants returns applicants with their screening results, sorted by
// overall score descending with unscored applicants last.
func (db *DB) ListApplicants(ctx context.Context, filter ApplicantFilter) ([]ApplicantDetail, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT a.id, a.name, a.email, a.phone, a.source, a.position_applied, a.created_at, a.updated_at
		 FROM applicants a
		 LEFT JOIN screening_results s ON s.applicant_id = a.id
		 WHERE 1=1`
	args := []any{}

	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		query += fmt.Sprintf(" AND s.overall_score >= $%d", len(args))
	}
	if filter.RecommendedOnly {
		query += " AND s.recommended_for_interview = TRUE"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY s.overall_score DESC NULLS LAST, a.created_at ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	defer rows.Close()

	var applicants []Applicant
	for rows.Next() {
		var a Applicant
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Source, &a.PositionApplied, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		applicants = append(applicants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applicants: %w", err)
	}

	details := make([]ApplicantDetail, 0, len(applicants))
	for _, a := range applicants {
		docs, err := db.GetDocumentsByApplicant(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		screening, err := db.GetScreeningByApplicant(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, ApplicantDetail{
			Applicant:       a,
			Documents:       docs,
			ScreeningResult: screening,
		})
	}
	return details, nil
}

// DeleteApplicant removes an applicant; documents and screening result
// cascade. Returns false if the applicant did not exist.
func (db *DB) DeleteApplicant(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM applicants WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete applicant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountApplicants returns the total number of applicants.
func (db *DB) CountApplicants(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applicants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count applicants: %w", err)
	}
	return count, nil
}
