package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/storage"
)

type fakeStore struct {
	applicantErr error
	documentErr  error
	applicants   []*db.Applicant
	documents    []*db.Document
}

func (s *fakeStore) CreateApplicant(_ context.Context, name, email, phone, source, position string) (*db.Applicant, error) {
	if s.applicantErr != nil {
		return nil, s.applicantErr
	}
	a := &db.Applicant{ID: uuid.New(), Name: name, Email: email, Phone: phone, Source: source, PositionApplied: position}
	s.applicants = append(s.applicants, a)
	return a, nil
}

func (s *fakeStore) CreateDocument(_ context.Context, doc *db.Document) (uuid.UUID, error) {
	if s.documentErr != nil {
		return uuid.Nil, s.documentErr
	}
	doc.ID = uuid.New()
	s.documents = append(s.documents, doc)
	return doc.ID, nil
}

type fakeExtractor struct {
	text  string
	pages int
}

func (f *fakeExtractor) Extract(string) string { return f.text }
func (f *fakeExtractor) PageCount(string) int  { return f.pages }

type fakeQueue struct {
	enqueued []uuid.UUID
}

func (q *fakeQueue) Enqueue(id uuid.UUID) {
	q.enqueued = append(q.enqueued, id)
}

func newTestPipeline(t *testing.T, store *fakeStore, queue *fakeQueue) *Pipeline {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return NewPipeline(store, files, &fakeExtractor{text: "extracted text", pages: 2}, queue, 1024*1024, zap.NewNop())
}

func pdfUpload(docType db.DocumentType, name string) Upload {
	return Upload{Type: docType, Filename: name, Content: []byte("%PDF-1.4 fake content")}
}

func TestProcess_AcceptsValidApplication(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	p := newTestPipeline(t, store, queue)

	meta := Metadata{Name: "Jordan Lee", Email: "jordan@example.com", Position: "Business Analyst"}
	uploads := []Upload{
		pdfUpload(db.DocResume, "resume.pdf"),
		pdfUpload(db.DocCoverLetter, "cover.pdf"),
	}

	applicant, err := p.Process(context.Background(), meta, uploads)
	require.NoError(t, err)
	require.NotNil(t, applicant)

	assert.Equal(t, "Jordan Lee", applicant.Name)
	require.Len(t, store.documents, 2)
	doc := store.documents[0]
	assert.Equal(t, db.DocResume, doc.Type)
	assert.Equal(t, "extracted text", doc.ExtractedText)
	assert.Equal(t, 2, doc.PageCount)
	assert.NotEmpty(t, doc.StoragePath)
	assert.Equal(t, storage.HashContent([]byte("%PDF-1.4 fake content")), doc.ContentSHA256)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, applicant.ID, queue.enqueued[0])
}

func TestProcess_RejectsEmptyApplication(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store, &fakeQueue{})

	_, err := p.Process(context.Background(), Metadata{}, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, store.applicants)
}

func TestProcess_RejectsInvalidEmail(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store, &fakeQueue{})

	_, err := p.Process(context.Background(), Metadata{Email: "not-an-email"}, []Upload{pdfUpload(db.DocResume, "resume.pdf")})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, store.applicants)
}

func TestProcess_RejectsNonPDFExtension(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store, &fakeQueue{})

	_, err := p.Process(context.Background(), Metadata{}, []Upload{
		{Type: db.DocResume, Filename: "resume.docx", Content: []byte("%PDF-1.4")},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "PDF")
}

func TestProcess_RejectsWrongSignature(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store, &fakeQueue{})

	_, err := p.Process(context.Background(), Metadata{}, []Upload{
		{Type: db.DocResume, Filename: "resume.pdf", Content: []byte("PK\x03\x04 zip bytes")},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "not a valid PDF")
	assert.Empty(t, store.applicants)
}

func TestProcess_RejectsOversizedFile(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	files, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	p := NewPipeline(store, files, &fakeExtractor{}, queue, 10, zap.NewNop())

	_, err = p.Process(context.Background(), Metadata{}, []Upload{pdfUpload(db.DocResume, "resume.pdf")})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "size limit")
	assert.Empty(t, store.applicants)
}

func TestProcess_RejectsUnknownDocumentType(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store, &fakeQueue{})

	_, err := p.Process(context.Background(), Metadata{}, []Upload{
		{Type: "portfolio", Filename: "x.pdf", Content: []byte("%PDF-1.4")},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "document_type", verr.Field)
}

func TestProcess_OneBadUploadRejectsWholeApplication(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	p := newTestPipeline(t, store, queue)

	_, err := p.Process(context.Background(), Metadata{}, []Upload{
		pdfUpload(db.DocResume, "resume.pdf"),
		{Type: db.DocTranscript, Filename: "transcript.txt", Content: []byte("plain text")},
	})

	require.Error(t, err)
	assert.Empty(t, store.applicants)
	assert.Empty(t, store.documents)
	assert.Empty(t, queue.enqueued)
}

func TestProcess_DocumentPersistFailureSkipsEnqueue(t *testing.T) {
	store := &fakeStore{documentErr: errors.New("db down")}
	queue := &fakeQueue{}
	p := newTestPipeline(t, store, queue)

	_, err := p.Process(context.Background(), Metadata{}, []Upload{pdfUpload(db.DocResume, "resume.pdf")})

	require.Error(t, err)
	assert.Empty(t, queue.enqueued)
}

func TestProcess_EmptyExtractionStillAccepted(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	files, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	p := NewPipeline(store, files, &fakeExtractor{text: ""}, queue, 1024, zap.NewNop())

	applicant, err := p.Process(context.Background(), Metadata{}, []Upload{pdfUpload(db.DocResume, "resume.pdf")})

	require.NoError(t, err)
	require.Len(t, store.documents, 1)
	assert.Empty(t, store.documents[0].ExtractedText)
	assert.Len(t, queue.enqueued, 1)
	assert.NotNil(t, applicant)
}
