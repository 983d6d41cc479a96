// Package storage persists uploaded document bytes on disk.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore writes uploaded documents under a base directory, one
// subdirectory per applicant.
type FileStore struct {
	baseDir string
	log     *zap.Logger
}

// NewFileStore creates a FileStore rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string, log *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", baseDir, err)
	}
	return &FileStore{baseDir: baseDir, log: log}, nil
}

// Save writes document bytes to disk and returns the storage path. Filenames
// are uuid-suffixed so repeated uploads of the same document type never clash.
func (fs *FileStore) Save(content []byte, originalFilename string, applicantID uuid.UUID, docType string) (string, error) {
	applicantDir := filepath.Join(fs.baseDir, fmt.Sprintf("applicant_%s", applicantID))
	if err := os.MkdirAll(applicantDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create applicant directory: %w", err)
	}

	ext := filepath.Ext(originalFilename)
	filename := fmt.Sprintf("%s_%s%s", docType, uuid.New().String()[:8], ext)
	path := filepath.Join(applicantDir, filename)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	fs.log.Info("stored document",
		zap.String("path", path),
		zap.Int("bytes", len(content)))

	return path, nil
}

// DeleteApplicantFiles removes every stored document for an applicant.
// Deleting a never-uploaded applicant is a no-op.
func (fs *FileStore) DeleteApplicantFiles(applicantID uuid.UUID) error {
	applicantDir := filepath.Join(fs.baseDir, fmt.Sprintf("applicant_%s", applicantID))
	if _, err := os.Stat(applicantDir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(applicantDir); err != nil {
		return fmt.Errorf("failed to delete files for applicant %s: %w", applicantID, err)
	}

	fs.log.Info("deleted applicant files", zap.String("applicant_id", applicantID.String()))
	return nil
}

// HashContent returns the SHA-256 hex digest of document bytes.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
