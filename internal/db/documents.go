package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateDocument inserts a document record and returns its ID.
func (db *DB) CreateDocument(ctx context.Context, doc *Document) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO documents (applicant_id, document_type, storage_path, original_filename,
		                        extracted_text, file_size_bytes, page_count, content_sha256)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		doc.ApplicantID, doc.Type, doc.StoragePath, doc.OriginalFilename,
		doc.ExtractedText, doc.FileSizeBytes, doc.PageCount, doc.ContentSHA256,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}

// GetDocumentsByApplicant returns all documents for an applicant, oldest first.
func (db *DB) GetDocumentsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, applicant_id, document_type, storage_path, original_filename,
		        extracted_text, file_size_bytes, page_count, content_sha256, uploaded_at
		 FROM documents WHERE applicant_id = $1 ORDER BY uploaded_at ASC`,
		applicantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ApplicantID, &d.Type, &d.StoragePath, &d.OriginalFilename,
			&d.ExtractedText, &d.FileSizeBytes, &d.PageCount, &d.ContentSHA256, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// UpdateDocumentText backfills extracted text on an existing document.
func (db *DB) UpdateDocumentText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET extracted_text = $1 WHERE id = $2`,
		text, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document text: %w", err)
	}
	return nil
}
