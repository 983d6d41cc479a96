// Package intake validates and stores applicant document uploads, then hands
// the applicant off for background screening.
package intake

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/storage"
)

// pdfSignature is the magic prefix every valid PDF starts with.
var pdfSignature = []byte("%PDF")

// Upload is one document submitted with an application.
type Upload struct {
	Type     db.DocumentType
	Filename string
	Content  []byte
}

// Metadata is the applicant-supplied contact information.
type Metadata struct {
	Name     string `validate:"omitempty,max=200"`
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"omitempty,max=50"`
	Source   string `validate:"omitempty,max=100"`
	Position string `validate:"omitempty,max=200"`
}

// ValidationError reports a rejected upload or invalid metadata. It maps to
// an HTTP 400 at the API boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Store is the persistence surface intake needs.
type Store interface {
	CreateApplicant(ctx context.Context, name, email, phone, source, position string) (*db.Applicant, error)
	CreateDocument(ctx context.Context, doc *db.Document) (uuid.UUID, error)
}

// TextExtractor converts a stored PDF to text and reads its page count.
type TextExtractor interface {
	Extract(path string) string
	PageCount(path string) int
}

// Enqueuer schedules background screening for an applicant.
type Enqueuer interface {
	Enqueue(applicantID uuid.UUID)
}

// Pipeline runs the intake flow: validate everything up front, create the
// applicant, store and extract each document, then enqueue screening. No
// applicant row is created until all uploads pass validation.
type Pipeline struct {
	store        Store
	files        *storage.FileStore
	extractor    TextExtractor
	queue        Enqueuer
	maxFileBytes int64
	validate     *validator.Validate
	log          *zap.Logger
}

// NewPipeline wires an intake pipeline. maxFileBytes caps individual upload
// size.
func NewPipeline(store Store, files *storage.FileStore, extractor TextExtractor, queue Enqueuer, maxFileBytes int64, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		store:        store,
		files:        files,
		extractor:    extractor,
		queue:        queue,
		maxFileBytes: maxFileBytes,
		validate:     validator.New(),
		log:          log,
	}
}

// Process accepts one application. It returns the created applicant, or a
// *ValidationError when the metadata or any upload is rejected. Screening is
// enqueued only after every document is stored and persisted.
func (p *Pipeline) Process(ctx context.Context, meta Metadata, uploads []Upload) (*db.Applicant, error) {
	if len(uploads) == 0 {
		return nil, &ValidationError{Message: "at least one document is required"}
	}
	if err := p.validate.Struct(meta); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid applicant metadata: %v", err)}
	}
	for _, upload := range uploads {
		if err := p.checkUpload(upload); err != nil {
			return nil, err
		}
	}

	applicant, err := p.store.CreateApplicant(ctx, meta.Name, meta.Email, meta.Phone, meta.Source, meta.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}

	for _, upload := range uploads {
		if err := p.ingestDocument(ctx, applicant.ID, upload); err != nil {
			return nil, err
		}
	}

	p.log.Info("application received",
		zap.String("applicant_id", applicant.ID.String()),
		zap.Int("documents", len(uploads)))

	p.queue.Enqueue(applicant.ID)
	return applicant, nil
}

// checkUpload enforces the per-document acceptance rules before anything is
// written.
func (p *Pipeline) checkUpload(upload Upload) error {
	if !db.ValidDocumentType(upload.Type) {
		return &ValidationError{
			Field:   "document_type",
			Message: fmt.Sprintf("unknown document type %q", upload.Type),
		}
	}
	if !strings.EqualFold(filepath.Ext(upload.Filename), ".pdf") {
		return &ValidationError{
			Field:   upload.Filename,
			Message: "only PDF files are accepted",
		}
	}
	if !bytes.HasPrefix(upload.Content, pdfSignature) {
		return &ValidationError{
			Field:   upload.Filename,
			Message: "file content is not a valid PDF",
		}
	}
	if int64(len(upload.Content)) > p.maxFileBytes {
		return &ValidationError{
			Field:   upload.Filename,
			Message: fmt.Sprintf("file exceeds the %d byte size limit", p.maxFileBytes),
		}
	}
	return nil
}

// ingestDocument stores the bytes, extracts text, and persists the document
// row. Extraction failure is not fatal: the document lands with empty text
// and scoring degrades downstream.
func (p *Pipeline) ingestDocument(ctx context.Context, applicantID uuid.UUID, upload Upload) error {
	path, err := p.files.Save(upload.Content, upload.Filename, applicantID, string(upload.Type))
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", upload.Filename, err)
	}

	text := p.extractor.Extract(path)
	if text == "" {
		p.log.Warn("no text extracted from upload",
			zap.String("applicant_id", applicantID.String()),
			zap.String("filename", upload.Filename))
	}

	doc := &db.Document{
		ApplicantID:      applicantID,
		Type:             upload.Type,
		StoragePath:      path,
		OriginalFilename: upload.Filename,
		ExtractedText:    text,
		FileSizeBytes:    int64(len(upload.Content)),
		PageCount:        p.extractor.PageCount(path),
		ContentSHA256:    storage.HashContent(upload.Content),
	}
	if _, err := p.store.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist document %s: %w", upload.Filename, err)
	}
	return nil
}
