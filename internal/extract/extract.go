// Package extract turns uploaded documents into plain text.
//
// Supported inputs:
//   - PDF: text of every page, each followed by a newline
//   - Word (.docx): text of every paragraph, each followed by a newline
//   - Images: OCR through an OCR engine (Google Cloud Vision)
//
// A supported file without extractable text yields an empty string rather
// than an error; callers treat it as "no content". When no OCR engine is
// configured, images yield ErrOCRUnavailable so callers can keep the raw
// image for a vision model instead.
package extract

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
)

const (
	MIMEPDF     = "application/pdf"
	MIMEDocx    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEUnknown = "application/octet-stream"
)

// ErrOCRUnavailable is returned for images when no OCR engine is configured.
var ErrOCRUnavailable = errors.New("image text extraction is not available: no OCR engine configured")

func init() {
	// Not in Go's builtin table and absent from many minimal mime.types files.
	_ = mime.AddExtensionType(".docx", MIMEDocx)
}

// OCR extracts text from image bytes.
type OCR interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// Extractor dispatches on media type.
type Extractor struct {
	ocr OCR
	log zerolog.Logger
}

// NewExtractor creates an extractor. ocr may be nil, in which case images
// report ErrOCRUnavailable.
func NewExtractor(ocr OCR) *Extractor {
	return &Extractor{
		ocr: ocr,
		log: logger.WithComponent("extract"),
	}
}

// OCRAvailable reports whether images can be turned into text.
func (e *Extractor) OCRAvailable() bool {
	return e.ocr != nil
}

// Extract returns the text content of the file at path, interpreted as mimeType.
func (e *Extractor) Extract(ctx context.Context, path, mimeType string) (string, error) {
	const op = "Extractor.Extract"

	switch {
	case mimeType == MIMEPDF:
		return extractPDF(path)
	case mimeType == MIMEDocx:
		return extractDocx(path)
	case strings.HasPrefix(mimeType, "image/"):
		if e.ocr == nil {
			e.log.Warn().Str("file", filepath.Base(path)).Msg("OCR engine not configured")
			return "", ErrOCRUnavailable
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read image: %w", err)
		}
		text, err := e.ocr.DetectText(ctx, data)
		if err != nil {
			return "", apperr.Wrap(op, apperr.ErrUpstream, err)
		}
		return text, nil
	default:
		return "", apperr.New(op, apperr.ErrUnsupportedFormat, mimeType)
	}
}

// DetectMIME guesses a media type from the file name's extension.
func DetectMIME(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return MIMEUnknown
	}
	typ := mime.TypeByExtension(ext)
	if typ == "" {
		return MIMEUnknown
	}
	mediaType, _, err := mime.ParseMediaType(typ)
	if err != nil {
		return MIMEUnknown
	}
	return mediaType
}

// WithTempFile writes data to a file in a fresh temporary directory, calls
// fn with its path and removes the directory afterwards whatever fn returns.
// The original name only contributes its extension.
func WithTempFile(name string, data []byte, fn func(path string) error) error {
	dir, err := os.MkdirTemp("", "upload-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return fn(path)
}
