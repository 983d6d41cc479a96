package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJobPosting inserts a job posting and returns it.
func (db *DB) CreateJobPosting(ctx context.Context, p *JobPosting) (*JobPosting, error) {
	skills, err := json.Marshal(p.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal required skills: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_postings
		   (title, description, location, department, required_skills,
		    preferred_qualifications, min_gpa, is_active, closes_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, posted_at`,
		p.Title, p.Description, p.Location, p.Department, skills,
		p.PreferredQualifications, p.MinGPA, p.IsActive, p.ClosesAt,
	).Scan(&p.ID, &p.PostedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return p, nil
}

// GetActivePostingByTitle returns the most recent active posting whose title
// matches (case-insensitive), or nil when none matches. Screening uses this
// to attach job requirements to the prompt.
func (db *DB) GetActivePostingByTitle(ctx context.Context, title string) (*JobPosting, error) {
	if title == "" {
		return nil, nil
	}

	var (
		p      JobPosting
		skills []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, description, location, department, required_skills,
		        preferred_qualifications, min_gpa, is_active, posted_at, closes_at
		 FROM job_postings
		 WHERE is_active = TRUE AND LOWER(title) = LOWER($1)
		 ORDER BY posted_at DESC LIMIT 1`,
		title,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Location, &p.Department, &skills,
		&p.PreferredQualifications, &p.MinGPA, &p.IsActive, &p.PostedAt, &p.ClosesAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}

	if err := json.Unmarshal(skills, &p.RequiredSkills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal required skills: %w", err)
	}
	return &p, nil
}

// ListJobPostings returns postings, optionally restricted to active ones.
func (db *DB) ListJobPostings(ctx context.Context, activeOnly bool) ([]JobPosting, error) {
	query := `SELECT id, title, description, location, department, required_skills,
	                 preferred_qualifications, min_gpa, is_active, posted_at, closes_at
	          FROM job_postings`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY posted_at DESC`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		var (
			p      JobPosting
			skills []byte
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Location, &p.Department, &skills,
			&p.PreferredQualifications, &p.MinGPA, &p.IsActive, &p.PostedAt, &p.ClosesAt); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		if err := json.Unmarshal(skills, &p.RequiredSkills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal required skills: %w", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job postings: %w", err)
	}
	return postings, nil
}

// DeleteJobPosting removes a posting. Returns false if not found.
func (db *DB) DeleteJobPosting(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job posting: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
